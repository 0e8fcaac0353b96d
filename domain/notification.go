package domain

// PushMessage is what the push gateway sends to a single device.
type PushMessage struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// PushDataUserID is the data key carrying the sender id, used by clients to open the room.
const PushDataUserID = "userId"
