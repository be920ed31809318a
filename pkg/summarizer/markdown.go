package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"
)

// MarkdownFormatter renders a Summary as Markdown tables.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", l10n.T("Conversion Summary"))
	fmt.Fprintf(&b, "%s: %s\n", l10n.T("Generated"), s.GeneratedAt.Format(time.RFC3339))
	if s.RunID != "" {
		fmt.Fprintf(&b, "%s: `%s`\n", l10n.T("Run ID"), s.RunID)
	}
	b.WriteString("\n")

	section(&b, l10n.T("Results"), [][2]string{
		{l10n.T("State"), s.Outcome.State},
		{l10n.T("Frames Written"), fmt.Sprintf("%d", s.Output.FrameCount)},
		{l10n.T("Payload Size"), formatBytes(s.Output.PayloadBytes)},
		{l10n.T("Average Frame Size"), formatBytes(uint64(s.Output.AverageFrameBytes() + 0.5))},
		{l10n.T("Largest Frame"), formatBytes(uint64(s.Output.MaxFrameBytes))},
		{l10n.T("Metadata Size"), fmt.Sprintf("%d B", s.Output.MetadataBytes)},
		{l10n.T("Elapsed"), s.Outcome.Duration.Round(time.Millisecond).String()},
		{l10n.T("Ended Early"), yesNo(s.Outcome.EndedEarly)},
	})

	section(&b, l10n.T("Source"), [][2]string{
		{l10n.T("Path"), s.Source.Path},
		{l10n.T("Codec"), orDash(s.Source.Codec)},
		{l10n.T("Native Size"), fmt.Sprintf("%dx%d", s.Source.Width, s.Source.Height)},
		{l10n.T("Frame Rate"), fmt.Sprintf("%.2f fps", s.Source.FPS)},
		{l10n.T("Declared Frames"), declared(s.Source.DeclaredFrames)},
	})

	resolution := s.Settings.Resolution
	if resolution == "" {
		resolution = l10n.T("Native")
	}
	maxFrames := l10n.T("Unlimited")
	if s.Settings.MaxFrames > 0 {
		maxFrames = fmt.Sprintf("%d", s.Settings.MaxFrames)
	}
	section(&b, l10n.T("Settings"), [][2]string{
		{l10n.T("Quality"), fmt.Sprintf("%d", s.Settings.Quality)},
		{l10n.T("Resolution"), resolution},
		{l10n.T("Frame Limit"), maxFrames},
		{l10n.T("Backend"), orDash(s.Settings.Backend)},
	})

	section(&b, l10n.T("Files"), [][2]string{
		{l10n.T("Output Directory"), s.Output.Dir},
		{l10n.T("Payload"), s.Output.FramesFile},
		{l10n.T("Metadata"), s.Output.MetadataFile},
	})

	if s.Outcome.ReadError != "" || len(s.Warnings) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", l10n.T("Warnings"))
		if s.Outcome.ReadError != "" {
			fmt.Fprintf(&b, "- %s: %s\n", l10n.T("Read failure"), s.Outcome.ReadError)
		}
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n%s framepack\n", l10n.T("Generated by"))
	return b.String()
}

func section(b *strings.Builder, title string, rows [][2]string) {
	fmt.Fprintf(b, "## %s\n\n", title)
	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", l10n.T("Item"), l10n.T("Value"))
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r[0], escapeCell(r[1]))
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func formatBytes(n uint64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	}
	return fmt.Sprintf("%d B", n)
}

func declared(n int) string {
	if n <= 0 {
		return l10n.T("Unknown")
	}
	return fmt.Sprintf("%d", n)
}

func yesNo(v bool) string {
	if v {
		return l10n.T("Yes")
	}
	return l10n.T("No")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var _ Formatter = (*MarkdownFormatter)(nil)
