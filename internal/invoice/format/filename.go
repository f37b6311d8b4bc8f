package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

const defaultFilenameSubject = "pelanggan"

// Filename builds the download name of an invoice:
// invoice-<company slug>-<YYYYMMDD>.pdf
func Filename(company string, issuedAt time.Time) string {
	subject := slug.MakeLang(strings.TrimSpace(company), "id")
	if subject == "" {
		subject = defaultFilenameSubject
	}
	return fmt.Sprintf("invoice-%s-%s.pdf", subject, issuedAt.Format("20060102"))
}
