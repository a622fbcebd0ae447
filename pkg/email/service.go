package email

import (
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/jlcstudio/site-backend/pkg/models"
)

// Service handles email sending
type Service struct {
	fromEmail     string
	fromName      string
	operatorEmail string
	payoutAmount  string
	sendGridKey   string
	useSendGrid   bool
}

// NewService creates a new email service
// If sendGridAPIKey is provided, emails will be sent via SendGrid
// Otherwise, emails will be logged to console (development mode)
func NewService(fromEmail, fromName, operatorEmail string, payoutAmountCents int64, sendGridAPIKey string) *Service {
	useSendGrid := sendGridAPIKey != ""
	if useSendGrid {
		log.Printf("✅ Email service initialized with SendGrid")
	} else {
		log.Printf("⚠️  Email service in console-only mode (set SENDGRID_API_KEY for production)")
	}

	return &Service{
		fromEmail:     fromEmail,
		fromName:      fromName,
		operatorEmail: operatorEmail,
		payoutAmount:  models.FormatUSD(payoutAmountCents),
		sendGridKey:   sendGridAPIKey,
		useSendGrid:   useSendGrid,
	}
}

// SendReferrerWelcome sends the welcome email with the referrer's
// personal code and share link.
func (s *Service) SendReferrerWelcome(r models.Referrer, shareURL string) error {
	subject, body, plainText := referrerWelcomeEmail(r, shareURL, s.payoutAmount)

	if s.useSendGrid {
		return s.sendViaSendGrid(r.Email, r.Name, subject, body, plainText, "")
	}

	return s.logEmailToConsole(r.Email, r.Name, subject, shareURL)
}

// SendNewReferrerAlert notifies the studio operator about a new signup
func (s *Service) SendNewReferrerAlert(r models.Referrer) error {
	subject, body, plainText := newReferrerAlertEmail(r)

	if s.useSendGrid {
		return s.sendViaSendGrid(s.operatorEmail, "JLC Studio", subject, body, plainText, "")
	}

	return s.logEmailToConsole(s.operatorEmail, "JLC Studio", subject, r.Code)
}

// SendPayoutDue notifies the studio operator that a referral converted
// and a payout is owed.
func (s *Service) SendPayoutDue(r models.Referrer, conv models.Conversion) error {
	subject, body, plainText := payoutDueEmail(r, conv, s.payoutAmount)

	if s.useSendGrid {
		return s.sendViaSendGrid(s.operatorEmail, "JLC Studio", subject, body, plainText, "")
	}

	return s.logEmailToConsole(s.operatorEmail, "JLC Studio", subject, conv.ReferralCode)
}

// SendReferralReward congratulates a referrer on a successful booking
func (s *Service) SendReferralReward(r models.Referrer, conv models.Conversion) error {
	subject, body, plainText := referralRewardEmail(r, conv, s.payoutAmount)

	if s.useSendGrid {
		return s.sendViaSendGrid(r.Email, r.Name, subject, body, plainText, "")
	}

	return s.logEmailToConsole(r.Email, r.Name, subject, conv.ReferralCode)
}

// SendContactInquiry forwards a contact-form submission to the studio
// operator. Reply-To is set to the customer so a reply goes straight back.
func (s *Service) SendContactInquiry(req models.ContactRequest) error {
	subject, body, plainText := contactInquiryEmail(req)

	if s.useSendGrid {
		return s.sendViaSendGrid(s.operatorEmail, "JLC Studio", subject, body, plainText, req.Email)
	}

	return s.logEmailToConsole(s.operatorEmail, "JLC Studio", subject, req.Email)
}

// SendContactConfirmation acknowledges a contact-form submission
func (s *Service) SendContactConfirmation(req models.ContactRequest) error {
	subject, body, plainText := contactConfirmationEmail(req)

	if s.useSendGrid {
		return s.sendViaSendGrid(req.Email, req.Name, subject, body, plainText, "")
	}

	return s.logEmailToConsole(req.Email, req.Name, subject, "")
}

// SendPendingPayoutDigest sends the operator a summary of conversions
// still awaiting payout. No-op when the list is empty.
func (s *Service) SendPendingPayoutDigest(pending []models.Conversion) error {
	if len(pending) == 0 {
		return nil
	}
	subject, body, plainText := pendingPayoutDigestEmail(pending, s.payoutAmount)

	if s.useSendGrid {
		return s.sendViaSendGrid(s.operatorEmail, "JLC Studio", subject, body, plainText, "")
	}

	return s.logEmailToConsole(s.operatorEmail, "JLC Studio", subject, fmt.Sprintf("%d pending payouts", len(pending)))
}

// sendViaSendGrid sends email using SendGrid API
func (s *Service) sendViaSendGrid(toEmail, toName, subject, htmlBody, plainTextBody, replyTo string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)

	message := mail.NewSingleEmail(from, subject, to, plainTextBody, htmlBody)
	if replyTo != "" {
		message.SetReplyTo(mail.NewEmail("", replyTo))
	}

	client := sendgrid.NewSendClient(s.sendGridKey)
	response, err := client.Send(message)

	if err != nil {
		log.Printf("❌ SendGrid error: %v", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		log.Printf("❌ SendGrid returned error status %d: %s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}

	log.Printf("✅ Email sent successfully to %s (SendGrid status: %d)", toEmail, response.StatusCode)
	return nil
}

// logEmailToConsole logs email details to console (development mode)
func (s *Service) logEmailToConsole(toEmail, toName, subject, detail string) error {
	log.Printf("📧 [EMAIL] %s", subject)
	log.Printf("   To: %s <%s>", toName, toEmail)
	log.Printf("   From: %s <%s>", s.fromName, s.fromEmail)
	if detail != "" {
		log.Printf("   Detail: %s", detail)
	}
	log.Printf("   ---")
	log.Printf("   ⚠️  Email NOT sent (development mode)")
	log.Printf("   Set SENDGRID_API_KEY environment variable to enable email sending")
	log.Printf("   ---")
	return nil
}

// esc escapes user-supplied text for the HTML bodies
func esc(s string) string {
	return html.EscapeString(s)
}

func referrerWelcomeEmail(r models.Referrer, shareURL, payout string) (subject, body, plainText string) {
	subject = "Welcome to the JLC Studio Referral Program! 🎉"
	body = fmt.Sprintf(`
		<html>
		<body style="font-family: Georgia, serif; color: #3b4a3a;">
			<h2 style="color: #3b4a3a;">Welcome to the JLC Studio Family!</h2>
			<p>Hi %s,</p>
			<p>Thank you for joining our referral program. Your personal referral code is:</p>
			<p style="font-size: 24px; font-weight: bold; color: #C4A052; letter-spacing: 2px;">%s</p>
			<p>Share your booking link with friends and family:</p>
			<p><a href="%s" style="background-color: #C4A052; color: white; padding: 14px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">Your Referral Link</a></p>
			<p>Or copy and paste this link:</p>
			<p><a href="%s">%s</a></p>
			<p><strong>You earn %s for every booking made with your code.</strong></p>
			<p>With gratitude,<br>JLC Studio</p>
		</body>
		</html>
	`, esc(r.FirstName()), esc(r.Code), shareURL, shareURL, shareURL, payout)

	plainText = fmt.Sprintf(`
Hi %s,

Thank you for joining the JLC Studio referral program!

Your personal referral code: %s

Share your booking link with friends and family:

%s

You earn %s for every booking made with your code.

With gratitude,
JLC Studio
	`, r.FirstName(), r.Code, shareURL, payout)

	return subject, body, plainText
}

func newReferrerAlertEmail(r models.Referrer) (subject, body, plainText string) {
	subject = fmt.Sprintf("New Referral Program Signup: %s", r.Name)
	body = fmt.Sprintf(`
		<html>
		<body style="font-family: Georgia, serif; color: #3b4a3a;">
			<h2 style="color: #3b4a3a;">New Referrer Signed Up</h2>
			<ul>
				<li><strong>Name:</strong> %s</li>
				<li><strong>Email:</strong> %s</li>
				<li><strong>Phone:</strong> %s</li>
				<li><strong>Code:</strong> %s</li>
				<li><strong>Payment Method:</strong> %s</li>
				<li><strong>Payment Details:</strong> %s</li>
			</ul>
		</body>
		</html>
	`, esc(r.Name), esc(r.Email), esc(r.Phone), esc(r.Code), esc(r.PaymentMethod), esc(r.PaymentDetails))

	plainText = fmt.Sprintf(`
New referrer signed up:

Name: %s
Email: %s
Phone: %s
Code: %s
Payment Method: %s
Payment Details: %s
	`, r.Name, r.Email, r.Phone, r.Code, r.PaymentMethod, r.PaymentDetails)

	return subject, body, plainText
}

func payoutDueEmail(r models.Referrer, conv models.Conversion, payout string) (subject, body, plainText string) {
	subject = fmt.Sprintf("💰 Referral Payout Due: %s to %s", payout, r.Name)
	body = fmt.Sprintf(`
		<html>
		<body style="font-family: Georgia, serif; color: #3b4a3a;">
			<h2 style="color: #3b4a3a;">Referral Conversion!</h2>
			<p>A booking just completed with referral code <strong style="color: #C4A052;">%s</strong>.</p>
			<ul>
				<li><strong>Referrer:</strong> %s (%s)</li>
				<li><strong>Payment Method:</strong> %s</li>
				<li><strong>Payment Details:</strong> %s</li>
				<li><strong>Customer:</strong> %s (%s)</li>
				<li><strong>Service:</strong> %s</li>
				<li><strong>Amount:</strong> %s</li>
			</ul>
			<p><strong>Payout owed: %s</strong></p>
		</body>
		</html>
	`, esc(conv.ReferralCode), esc(r.Name), esc(r.Email), esc(r.PaymentMethod), esc(r.PaymentDetails),
		esc(conv.CustomerName), esc(conv.CustomerEmail), esc(conv.Service), esc(conv.Amount), payout)

	plainText = fmt.Sprintf(`
A booking just completed with referral code %s.

Referrer: %s (%s)
Payment Method: %s
Payment Details: %s
Customer: %s (%s)
Service: %s
Amount: %s

Payout owed: %s
	`, conv.ReferralCode, r.Name, r.Email, r.PaymentMethod, r.PaymentDetails,
		conv.CustomerName, conv.CustomerEmail, conv.Service, conv.Amount, payout)

	return subject, body, plainText
}

func referralRewardEmail(r models.Referrer, conv models.Conversion, payout string) (subject, body, plainText string) {
	subject = fmt.Sprintf("You earned %s! 🎉", payout)
	body = fmt.Sprintf(`
		<html>
		<body style="font-family: Georgia, serif; color: #3b4a3a;">
			<h2 style="color: #3b4a3a;">Great News, %s!</h2>
			<p>Someone just booked with your referral code <strong style="color: #C4A052;">%s</strong>.</p>
			<p style="font-size: 24px; font-weight: bold; color: #C4A052;">You earned %s!</p>
			<p>We'll send your payout via %s shortly.</p>
			<p>Keep sharing your link to earn more.</p>
			<p>With gratitude,<br>JLC Studio</p>
		</body>
		</html>
	`, esc(r.FirstName()), esc(conv.ReferralCode), payout, esc(r.PaymentMethod))

	plainText = fmt.Sprintf(`
Great news, %s!

Someone just booked with your referral code %s.

You earned %s!

We'll send your payout via %s shortly.

Keep sharing your link to earn more.

With gratitude,
JLC Studio
	`, r.FirstName(), conv.ReferralCode, payout, r.PaymentMethod)

	return subject, body, plainText
}

func contactInquiryEmail(req models.ContactRequest) (subject, body, plainText string) {
	subject = fmt.Sprintf("New Inquiry from %s", req.Name)

	optional := func(v string) string {
		if strings.TrimSpace(v) == "" {
			return "Not provided"
		}
		return v
	}

	body = fmt.Sprintf(`
		<html>
		<body style="font-family: Georgia, serif; color: #3b4a3a;">
			<h2 style="color: #3b4a3a;">New Contact Form Submission</h2>
			<ul>
				<li><strong>Name:</strong> %s</li>
				<li><strong>Email:</strong> %s</li>
				<li><strong>Phone:</strong> %s</li>
				<li><strong>Service:</strong> %s</li>
				<li><strong>Event Date:</strong> %s</li>
				<li><strong>Budget:</strong> %s</li>
			</ul>
			<h3 style="color: #3b4a3a;">Message</h3>
			<p>%s</p>
		</body>
		</html>
	`, esc(req.Name), esc(req.Email), esc(optional(req.Phone)), esc(optional(req.Service)),
		esc(optional(req.EventDate)), esc(optional(req.Budget)), esc(req.Message))

	plainText = fmt.Sprintf(`
New contact form submission:

Name: %s
Email: %s
Phone: %s
Service: %s
Event Date: %s
Budget: %s

Message:
%s
	`, req.Name, req.Email, optional(req.Phone), optional(req.Service),
		optional(req.EventDate), optional(req.Budget), req.Message)

	return subject, body, plainText
}

func contactConfirmationEmail(req models.ContactRequest) (subject, body, plainText string) {
	subject = "We received your inquiry — JLC Studio"
	body = fmt.Sprintf(`
		<html>
		<body style="font-family: Georgia, serif; color: #3b4a3a;">
			<h2 style="color: #3b4a3a;">Thank You, %s!</h2>
			<p>We received your inquiry and will get back to you within 1-2 business days.</p>
			<p>In the meantime, feel free to browse our portfolio and follow along on Instagram.</p>
			<p>With gratitude,<br>JLC Studio</p>
		</body>
		</html>
	`, esc(req.Name))

	plainText = fmt.Sprintf(`
Thank you, %s!

We received your inquiry and will get back to you within 1-2 business days.

With gratitude,
JLC Studio
	`, req.Name)

	return subject, body, plainText
}

func pendingPayoutDigestEmail(pending []models.Conversion, payout string) (subject, body, plainText string) {
	subject = fmt.Sprintf("Referral Payouts Pending: %d", len(pending))

	var htmlRows, plainRows strings.Builder
	for _, c := range pending {
		fmt.Fprintf(&htmlRows, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			esc(c.ReferralCode), esc(c.CustomerName), esc(c.Service), esc(c.Amount), c.CreatedAt.Format("2006-01-02"))
		fmt.Fprintf(&plainRows, "- %s | %s | %s | %s | %s\n",
			c.ReferralCode, c.CustomerName, c.Service, c.Amount, c.CreatedAt.Format("2006-01-02"))
	}

	body = fmt.Sprintf(`
		<html>
		<body style="font-family: Georgia, serif; color: #3b4a3a;">
			<h2 style="color: #3b4a3a;">Pending Referral Payouts</h2>
			<p>%d conversion(s) are awaiting a %s payout:</p>
			<table border="1" cellpadding="6" cellspacing="0">
				<tr><th>Code</th><th>Customer</th><th>Service</th><th>Amount</th><th>Date</th></tr>
				%s
			</table>
		</body>
		</html>
	`, len(pending), payout, htmlRows.String())

	plainText = fmt.Sprintf(`
%d conversion(s) are awaiting a %s payout:

%s
	`, len(pending), payout, plainRows.String())

	return subject, body, plainText
}
