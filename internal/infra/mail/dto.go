package mail

import "gopkg.in/gomail.v2"

type ReassignmentEmailData struct {
	SellerName    string
	LeadName      string
	LeadPhone     string
	Status        string
	PreviousOwner string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string

	dialer dialer
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}
