package config

import "time"

const (
	// DefaultTargetURL is the transliterator the built-in corpus was written against
	DefaultTargetURL = "https://www.swifttranslator.com/"
	// DefaultInputSelector locates the Singlish input box
	DefaultInputSelector = "role:textbox:Input Your Singlish Text Here."
	// DefaultOutputSelector locates the Sinhala output panel
	DefaultOutputSelector = "css:div.w-full.h-80.p-3.rounded-lg.ring-1.ring-slate-300.whitespace-pre-wrap"
	// DefaultOutputExclude skips candidates that are or contain form controls
	DefaultOutputExclude = "textarea"

	// DefaultPageLoad bounds navigation plus region binding
	DefaultPageLoad = 15 * time.Second
	// DefaultPostClearSettle bounds the wait for an emptied output after a clear
	DefaultPostClearSettle = 3 * time.Second
	// DefaultTranslationTimeout bounds the wait for a stable output after injection
	DefaultTranslationTimeout = 10 * time.Second
	// DefaultQuiescence is how long the output must stay unchanged to count as stable
	DefaultQuiescence = 750 * time.Millisecond
	// DefaultPollInterval is the sampling period of every wait
	DefaultPollInterval = 100 * time.Millisecond
	// DefaultInterCasePause is the pause between consecutive cases in a session
	DefaultInterCasePause = 2 * time.Second
	// DefaultPartialWindow bounds the live-update check of the interactive scenario
	DefaultPartialWindow = 5 * time.Second
	// DefaultTypingDelay is the pause between typed grapheme clusters
	DefaultTypingDelay = 150 * time.Millisecond

	// DefaultSessions is the number of independent browser sessions
	DefaultSessions = 1
	// DefaultReportFile is the default report file name
	DefaultReportFile = "livecheck-report.json"
	// DefaultReportDir is the default report directory
	DefaultReportDir = "storage"
	// DefaultLogLevel is the slog level used when none is configured
	DefaultLogLevel = "warn"
	// DefaultEnvFile is loaded when present
	DefaultEnvFile = ".env"
)

// DefaultPathsToIgnore are the directories skipped when scanning for corpus files
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"storage",
	"testdata",
}
