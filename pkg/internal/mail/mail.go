package mail

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

// Sender delivers one-time codes to users.
type Sender interface {
	Send(ctx context.Context, template Template, address, name, code string) error
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Sender   string `mapstructure:"sender"`
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	from := cfg.Sender
	if from == "" {
		from = cfg.Username
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

func (s *SMTPSender) Send(ctx context.Context, template Template, address, name, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body, err := Render(template, name, code)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetAddressHeader("To", address, name)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send %s mail: %w", template, err)
	}
	return nil
}

// LogSender prints codes instead of mailing them, for local development.
type LogSender struct{}

func (LogSender) Send(_ context.Context, template Template, address, name, code string) error {
	if _, ok := templates[template]; !ok {
		return fmt.Errorf("unknown mail template: %s", template)
	}
	log.Info().
		Str("template", string(template)).
		Str("address", address).
		Str("name", name).
		Str("code", code).
		Msg("Mail delivery is disabled, the code was logged instead.")
	return nil
}

func NewFromViper() Sender {
	var cfg SMTPConfig
	if err := viper.UnmarshalKey("mail", &cfg); err != nil || cfg.Host == "" {
		log.Warn().Msg("Mail settings are missing, codes will be written to the log.")
		return LogSender{}
	}
	return NewSMTPSender(cfg)
}

// Render produces the subject and html body of a template.
func Render(template Template, name, code string) (string, string, error) {
	tmpl, ok := templates[template]
	if !ok {
		return "", "", fmt.Errorf("unknown mail template: %s", template)
	}

	var buf bytes.Buffer
	if err := tmpl.body.Execute(&buf, map[string]string{"Name": name, "Code": code}); err != nil {
		return "", "", fmt.Errorf("failed to render %s mail: %w", template, err)
	}
	return tmpl.subject, buf.String(), nil
}
