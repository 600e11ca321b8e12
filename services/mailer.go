package services

import (
	"fmt"

	"verify-station/config"
	"verify-station/models"

	"gopkg.in/gomail.v2"
)

// Mailer sends the end-of-job summary to the floor supervisor inbox. Disabled
// unless SMTP_HOST and REPORT_EMAIL are configured; failures are logged and
// never surfaced to the operator.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	to       string
}

func NewMailerFromConfig() *Mailer {
	return &Mailer{
		host:     config.SMTPHost,
		port:     config.SMTPPort,
		user:     config.SMTPUser,
		password: config.SMTPPassword,
		to:       config.ReportEmail,
	}
}

func (m *Mailer) Enabled() bool {
	return m.host != "" && m.to != ""
}

// SendJobSummaryAsync fires the summary mail in the background.
func (m *Mailer) SendJobSummaryAsync(summary models.JobSummary) {
	if !m.Enabled() {
		return
	}
	go func() {
		if err := m.sendJobSummary(summary); err != nil {
			config.GetLogger().Error("Failed to send job summary mail: " + err.Error())
			return
		}
		config.GetLogger().Info("Job summary mail sent for " + summary.JobID)
	}()
}

func (m *Mailer) sendJobSummary(summary models.JobSummary) error {
	subject := "Job ended: " + summary.JobID
	body := fmt.Sprintf(`
		<html>
			<body>
				<h3>Verification job %s ended</h3>
				<p>Shippers scanned: <strong>%d</strong> (pass %d / fail %d, %.1f%%)</p>
				<p>Pieces: <strong>%d</strong> &mdash; elapsed %s</p>
				<p>This is an auto-generated email. Please do not reply.</p>
			</body>
		</html>
	`, summary.JobID, summary.TotalScans, summary.PassCount, summary.FailCount,
		summary.PassRate, summary.TotalPieces, summary.Elapsed)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.user)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.host, m.port, m.user, m.password)
	return dialer.DialAndSend(msg)
}
