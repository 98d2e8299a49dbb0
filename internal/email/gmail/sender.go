package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"mime"
	"os"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/vijay-prabhu/jobmatch/internal/notify"
)

// MessageSender is the Gmail call used to deliver a message
type MessageSender interface {
	Send(ctx context.Context, msg *gmail.Message) error
}

type serviceSender struct {
	service *gmail.Service
}

func (s serviceSender) Send(ctx context.Context, msg *gmail.Message) error {
	_, err := s.service.Users.Messages.Send("me", msg).Context(ctx).Do()
	return err
}

// Sender delivers match notifications as email through the Gmail API
type Sender struct {
	from    string
	to      string
	sender  MessageSender
	subject string
}

// Options configures a Sender
type Options struct {
	CredentialsPath string
	TokenPath       string
	From            string
	To              string
	Interactive     bool      // allow the browser OAuth flow
	Out             io.Writer // prompts during the OAuth flow, defaults to stderr
}

// NewSender authorizes against Gmail and returns a ready Sender
func NewSender(ctx context.Context, opts Options) (*Sender, error) {
	if opts.To == "" {
		return nil, fmt.Errorf("gmail notifications need a recipient address")
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	config, err := loadCredentials(opts.CredentialsPath)
	if err != nil {
		return nil, err
	}

	client, err := httpClient(ctx, config, opts.TokenPath, opts.Interactive, out)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth client: %w", err)
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return NewSenderWith(serviceSender{service: service}, opts.From, opts.To), nil
}

// NewSenderWith builds a Sender around an existing MessageSender
func NewSenderWith(sender MessageSender, from, to string) *Sender {
	return &Sender{
		from:    from,
		to:      to,
		sender:  sender,
		subject: "New job match",
	}
}

func (s *Sender) Name() string { return "gmail" }

// Send mails one notification
func (s *Sender) Send(ctx context.Context, req notify.Request) error {
	raw := BuildMessage(s.from, s.to, s.subject, req)
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}

	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send gmail notification for %s: %w", req.PostingID, err)
	}
	return nil
}

// BuildMessage renders a notification as an RFC 2822 message
func BuildMessage(from, to, subject string, req notify.Request) []byte {
	var buf bytes.Buffer

	title := req.Title
	if req.Company != "" {
		title = fmt.Sprintf("%s at %s", req.Title, req.Company)
	}

	if from != "" {
		fmt.Fprintf(&buf, "From: %s\r\n", from)
	}
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", fmt.Sprintf("%s: %s", subject, title)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "%s\r\n\r\n", title)
	fmt.Fprintf(&buf, "Match score: %d%%\r\n", int(math.Round(req.Score*100)))
	if len(req.MatchingSkills) > 0 {
		fmt.Fprintf(&buf, "Matching skills: %s\r\n", strings.Join(req.MatchingSkills, ", "))
	}
	fmt.Fprintf(&buf, "Posting ID: %s\r\n", req.PostingID)

	return buf.Bytes()
}

// Authorize runs the browser flow and stores the token for later sends
func Authorize(ctx context.Context, credPath, tokenPath string, out io.Writer) error {
	config, err := loadCredentials(credPath)
	if err != nil {
		return err
	}
	token, err := tokenFromWeb(ctx, config, out)
	if err != nil {
		return err
	}
	if err := saveToken(tokenPath, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}
