// Package hints builds the "hint:" lines the CLI appends to error messages.
// Every hint has the form "\n  hint: <text>", or is empty.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-html2pptx/internal/fileutil"
)

// Replaced in tests.
var (
	getenv      = os.Getenv
	inContainer = func() bool { return fileutil.FileExists("/.dockerenv") }
)

// ForBrowserConnect suggests the Chrome settings that usually fix a failed
// launch: no sandbox in CI or containers, and an explicit browser binary.
func ForBrowserConnect() string {
	var hints []string

	ci := false
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if getenv(v) != "" {
			ci = true
			break
		}
	}
	if (ci || inContainer()) && getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use a specific Chrome")
	}
	return format(strings.Join(hints, "; "))
}

// ForTimeout suggests raising the per-slide render timeout.
func ForTimeout() string {
	return format("for slides with heavy media, raise browser.timeout or use --timeout")
}

// ForConfigNotFound suggests --config, or creating the first searched path
// under the user config directory.
func ForConfigNotFound(searched []string) string {
	hint := "use --config /path/to/file.yaml or run: html2pptx init"
	for _, p := range searched {
		if strings.Contains(p, "go-html2pptx") {
			return format(hint + ", or create " + p)
		}
	}
	return format(hint)
}

// ForOutputDirectory is shown when the output directory cannot be written.
func ForOutputDirectory() string {
	return format("check that slides.output_directory exists and is writable")
}

// ForStyleNotFound lists the built-in slide styles.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available styles: " + strings.Join(available, ", "))
}

// ForEngineUnavailable is shown when the external converter cannot run.
// The native engine is always available.
func ForEngineUnavailable(engine string) string {
	if engine == "native" {
		return ""
	}
	return format("install the converter or set conversion.command; use --engine native to skip it")
}

// ForTrialMode is shown when output was watermarked for lack of a license.
func ForTrialMode() string {
	return format("set license.key or HTML2PPTX_LICENSE_KEY to remove the watermark")
}

// ForBelowThreshold is shown when too few slides rendered.
func ForBelowThreshold() string {
	return format("inspect the failed slides with --verbose, or lower pipeline.min_success_ratio")
}

// ForNoSlides is shown when the input directory holds no slides.
func ForNoSlides() string {
	return format("slides must be .html, .htm, .md or .markdown files directly inside the input directory")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
