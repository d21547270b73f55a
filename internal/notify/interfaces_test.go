package notify

type sender interface {
	Sender
}
