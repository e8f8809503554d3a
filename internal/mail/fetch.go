// Package mail retrieves the bill PDF from an IMAP inbox and sends the
// formatted summary over SMTP.
package mail

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	imapmail "github.com/emersion/go-message/mail"

	"github.com/insightdelivered/phone-bill-splitter/internal/config"
)

// The fetched bill is always saved under this name so repeated runs
// overwrite instead of accumulating.
const billFilename = "bill.pdf"

// FetchBill searches the inbox for the newest message matching the
// configured subject within the lookback window, saves its PDF attachment
// into the attachment directory, and returns the saved path.
func FetchBill(cfg *config.Config) (string, error) {
	slog.Info("connecting to IMAP server", "addr", cfg.IMAPAddr)
	c, err := client.DialTLS(cfg.IMAPAddr, nil)
	if err != nil {
		return "", fmt.Errorf("connecting to %s: %w", cfg.IMAPAddr, err)
	}
	defer c.Logout()

	if err := c.Login(cfg.User, cfg.Password); err != nil {
		return "", fmt.Errorf("IMAP login failed: %w", err)
	}
	if _, err := c.Select("INBOX", false); err != nil {
		return "", fmt.Errorf("selecting inbox: %w", err)
	}

	since := time.Now().AddDate(0, 0, -cfg.LookbackDays)
	slog.Info("searching for bill emails", "since", since.Format("2006-01-02"), "subject", cfg.Subject)

	criteria := imap.NewSearchCriteria()
	criteria.Since = since
	ids, err := c.Search(criteria)
	if err != nil {
		return "", fmt.Errorf("searching inbox: %w", err)
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("no emails found since %s", since.Format("2006-01-02"))
	}

	matched, err := filterBySubject(c, ids, cfg.Subject)
	if err != nil {
		return "", err
	}
	if len(matched) == 0 {
		return "", fmt.Errorf("no emails matched subject %q", cfg.Subject)
	}
	slog.Info("matching bill emails found", "count", len(matched))

	// The highest sequence number is the latest message
	latest := matched[len(matched)-1]
	return saveAttachment(c, latest, cfg.AttachmentDir)
}

// filterBySubject fetches envelopes and keeps messages whose subject
// contains the wanted phrase, case-insensitively.
func filterBySubject(c *client.Client, ids []uint32, subject string) ([]uint32, error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	messages := make(chan *imap.Message, len(ids))
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope}, messages)
	}()

	want := strings.ToLower(subject)
	var matched []uint32
	for msg := range messages {
		if msg.Envelope == nil {
			continue
		}
		if strings.Contains(strings.ToLower(msg.Envelope.Subject), want) {
			matched = append(matched, msg.SeqNum)
		}
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetching envelopes: %w", err)
	}
	return matched, nil
}

// saveAttachment downloads one message and writes its first PDF attachment
// to dir as bill.pdf.
func saveAttachment(c *client.Client, seqNum uint32, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating attachment dir %q: %w", dir, err)
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNum)

	section := &imap.BodySectionName{Peek: true}
	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{section.FetchItem()}, messages)
	}()

	var savedPath string
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		mr, err := imapmail.CreateReader(body)
		if err != nil {
			return "", fmt.Errorf("reading message body: %w", err)
		}
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", fmt.Errorf("reading message part: %w", err)
			}
			header, ok := part.Header.(*imapmail.AttachmentHeader)
			if !ok {
				continue
			}
			filename, _ := header.Filename()
			if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
				continue
			}
			savedPath = filepath.Join(dir, billFilename)
			f, err := os.Create(savedPath)
			if err != nil {
				return "", fmt.Errorf("creating %q: %w", savedPath, err)
			}
			if _, err := io.Copy(f, part.Body); err != nil {
				f.Close()
				return "", fmt.Errorf("saving attachment: %w", err)
			}
			f.Close()
			slog.Info("attachment saved", "from", filename, "to", savedPath)
		}
	}
	if err := <-done; err != nil {
		return "", fmt.Errorf("fetching message: %w", err)
	}
	if savedPath == "" {
		return "", fmt.Errorf("latest matching email has no PDF attachment")
	}
	return savedPath, nil
}

// CleanAttachments removes regular files from the attachment directory.
// Subdirectories are skipped.
func CleanAttachments(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading attachment dir %q: %w", dir, err)
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			slog.Info("skipped (not a file)", "path", path)
			continue
		}
		if err := os.Remove(path); err != nil {
			slog.Error("failed to delete attachment", "path", path, "err", err)
			continue
		}
		slog.Info("deleted attachment", "path", path)
	}
	return nil
}
