package prompt

import (
	"fmt"
	"os"
	"strings"

	"github.com/zjy-dev/cov2ai/internal/logger"
)

// Header returns the human-readable prompt text printed before the
// payload. A missing or unreadable file degrades to a warning comment in
// the output rather than failing the run: the payload itself is the
// product, the header is garnish.
func Header(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("prompt header unavailable: %v", err)
		return fmt.Sprintf("# Warning: failed to read prompt: %v", err)
	}
	return strings.TrimRight(string(content), "\n")
}
