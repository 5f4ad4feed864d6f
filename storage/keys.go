package storage

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Object key layout: {namespace}/pdf-files/pdf-{unixMillis}-{random}.pdf
const (
	pdfCategory  = "pdf-files"
	pdfKeyPrefix = "pdf"
)

// BuildPDFKey constructs a collision-resistant object key for a staged PDF
// under the application namespace. The suffix combines a millisecond
// timestamp with a random component so concurrent uploads never collide.
func BuildPDFKey(namespace string) string {
	suffix := fmt.Sprintf("%d-%09d", time.Now().UnixMilli(), rand.IntN(1_000_000_000))
	return fmt.Sprintf("%s/%s/%s-%s.pdf", namespace, pdfCategory, pdfKeyPrefix, suffix)
}
