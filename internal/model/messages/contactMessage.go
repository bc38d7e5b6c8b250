package messages

// ContactMessage carries the contact form fields to the email relay.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
