package ingest

import (
	"fmt"
	"html"
	"strings"
)

// singleEmail builds the notification for a standalone submission,
// referencing the scouted title and the original listing link.
func singleEmail(title, link string) (subject, body string) {
	subject = fmt.Sprintf("Submission Received: %s", title)

	var b strings.Builder
	b.WriteString(`<div style="font-family: sans-serif;">`)
	b.WriteString(`<h3>Thanks for your submission!</h3>`)
	fmt.Fprintf(&b, `<p>We have received your link for: <strong>%s</strong></p>`, html.EscapeString(title))
	b.WriteString(`<p>It is now live in the marketplace.</p>`)
	fmt.Fprintf(&b, `<p><a href="%s" style="color: #9333ea; font-weight: bold;">View Original Listing</a></p>`, html.EscapeString(link))
	b.WriteString(`</div>`)
	return subject, b.String()
}

// bulkEmail builds the batch-completion notification enumerating every
// title accumulated across the bulk upload.
func bulkEmail(totalCount int, titles []string) (subject, body string) {
	subject = fmt.Sprintf("Bulk Upload Success: %d Items Added", totalCount)

	var b strings.Builder
	b.WriteString(`<div style="font-family: sans-serif; line-height: 1.6;">`)
	b.WriteString(`<h2 style="color: #9333ea;">Bulk Inventory Update Complete</h2>`)
	fmt.Fprintf(&b, `<p>Your spreadsheet of <b>%d items</b> has been processed.</p>`, totalCount)
	b.WriteString(`<p>The following items are now live on MusicWeb:</p>`)
	b.WriteString(`<ul style="background: #f4f4f4; padding: 20px; border-radius: 8px; list-style-type: none;">`)
	for _, title := range titles {
		fmt.Fprintf(&b,
			`<li style="margin-bottom: 8px; border-bottom: 1px solid #ddd; padding-bottom: 4px;">✅ %s</li>`,
			html.EscapeString(title),
		)
	}
	b.WriteString(`</ul>`)
	b.WriteString(`<p>Best,<br/>The MusicWeb Team</p>`)
	b.WriteString(`</div>`)
	return subject, b.String()
}
