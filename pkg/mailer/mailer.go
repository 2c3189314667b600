package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"ridebook/config"
	"ridebook/pkg/logger"
)

var ErrNotConfigured = errors.New("email service not configured")

// Result describes one delivery attempt. Error is set instead of returning a Go error.
type Result struct {
	ID     string    `json:"id"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	SentAt time.Time `json:"sentAt"`
	Error  string    `json:"error,omitempty"`
}

func (r Result) OK() bool { return r.Error == "" }

type Mailer struct {
	apiURL   string
	apiKey   string
	from     string
	loginURL string
	client   *http.Client
	log      logger.ILogger
}

func New(cfg config.Config, log logger.ILogger) *Mailer {
	return &Mailer{
		apiURL:   strings.TrimRight(cfg.EmailAPIURL, "/"),
		apiKey:   cfg.EmailAPIKey,
		from:     cfg.EmailFrom,
		loginURL: cfg.AppLoginURL,
		client:   &http.Client{Timeout: 15 * time.Second},
		log:      log,
	}
}

var credentialsTmpl = template.Must(template.New("credentials").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Welcome, {{.Name}}!</h2>
  <p>Your {{.Role}} account has been approved. Use the credentials below to sign in.</p>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px 4px 0;"><strong>Email</strong></td><td>{{.Email}}</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;"><strong>Password</strong></td><td><code>{{.Password}}</code></td></tr>
  </table>
  <p><a href="{{.LoginURL}}">Sign in</a></p>
  <p>Please change your password after the first login.</p>
</body>
</html>`))

type credentialsView struct {
	Name     string
	Email    string
	Password string
	Role     string
	LoginURL string
}

func (m *Mailer) renderCredentials(to, name, password, role string) (string, error) {
	var buf bytes.Buffer
	err := credentialsTmpl.Execute(&buf, credentialsView{
		Name:     name,
		Email:    to,
		Password: password,
		Role:     role,
		LoginURL: m.loginURL,
	})
	return buf.String(), err
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// SendCredentials emails a freshly generated password to a new account holder.
func (m *Mailer) SendCredentials(ctx context.Context, to, name, password, role string) Result {
	res := Result{From: m.from, To: to, SentAt: time.Now().UTC()}

	if m.apiKey == "" || m.from == "" {
		res.Error = ErrNotConfigured.Error()
		return res
	}

	html, err := m.renderCredentials(to, name, password, role)
	if err != nil {
		res.Error = fmt.Sprintf("render template: %v", err)
		return res
	}

	id, err := m.send(ctx, sendRequest{
		From:    m.from,
		To:      []string{to},
		Subject: "Your account is ready",
		HTML:    html,
	})
	if err != nil {
		m.log.Error("failed to send credentials email", logger.String("to", to), logger.Error(err))
		res.Error = err.Error()
		return res
	}

	res.ID = id
	m.log.Info("credentials email sent", logger.String("to", to), logger.String("id", id))
	return res
}

func (m *Mailer) send(ctx context.Context, body sendRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var out sendResponse
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode >= http.StatusBadRequest {
		msg := out.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return "", fmt.Errorf("email api returned %d: %s", resp.StatusCode, msg)
	}
	return out.ID, nil
}
