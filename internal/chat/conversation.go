package chat

import "fmt"

// ConversationKind distinguishes the two physical message surfaces.
type ConversationKind string

const (
	KindChannel ConversationKind = "channel"
	KindDirect  ConversationKind = "direct_message"
)

// ConversationRef identifies one conversation. Kind and ID together
// are the key; channel and thread ids live in separate namespaces.
type ConversationRef struct {
	Kind ConversationKind
	ID   uint
}

// ChannelRef builds a reference to a channel conversation.
func ChannelRef(id uint) ConversationRef {
	return ConversationRef{Kind: KindChannel, ID: id}
}

// DirectRef builds a reference to a DM thread conversation.
func DirectRef(id uint) ConversationRef {
	return ConversationRef{Kind: KindDirect, ID: id}
}

func (r ConversationRef) String() string {
	return fmt.Sprintf("%s/%d", r.Kind, r.ID)
}
