package notification

import "time"

type Notification struct {
	Id        int
	UserId    int
	Title     string
	Body      string
	Read      bool
	CreatedAt time.Time
}
