package email

// Config holds email service configuration. The Postmark tokens are
// optional to support development environments where real email sending
// is disabled; SenderEmail establishes the sender identity for all
// outbound mail.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"noreply@finbuddy.app"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@finbuddy.app"`
}
