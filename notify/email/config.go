// Package email delivers billing notifications to clients over SMTP.
package email

// Config configures SMTP delivery and the sender identity.
type Config struct {
	Host     string `json:"host"     mapstructure:"host"     yaml:"host"`
	Port     int    `json:"port"     mapstructure:"port"     yaml:"port"`
	Username string `json:"username" mapstructure:"username" yaml:"username"`
	Password string `json:"password" mapstructure:"password" yaml:"password"`
	UseTLS   bool   `json:"use_tls"  mapstructure:"use_tls"  yaml:"use_tls"`

	FromEmail string `json:"from_email" mapstructure:"from_email" yaml:"from_email"`
	FromName  string `json:"from_name"  mapstructure:"from_name"  yaml:"from_name"`

	// Company signs every message ("<Company> Billing Team").
	Company string `json:"company" mapstructure:"company" yaml:"company"`
}

// DefaultConfig returns the default SMTP configuration.
func DefaultConfig() Config {
	return Config{
		Host:      "smtp.gmail.com",
		Port:      587,
		UseTLS:    true,
		FromEmail: "billing@chromapages.com",
		FromName:  "Chromapages Billing",
		Company:   "Chromapages",
	}
}
