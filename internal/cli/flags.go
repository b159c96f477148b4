package cli

import "livecheck/internal/config"

// Flags holds command-line flags
type Flags struct {
	Corpus            string
	Filter            string
	Where             string
	URL               string
	Sessions          int
	Headful           bool
	VerifyIdempotence bool
	Report            string
	MetricsFile       string
	HistoryDSN        string
	LogLevel          string
	OpenFailures      bool
	Metadata          bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Corpus:            f.Corpus,
		Filter:            f.Filter,
		Where:             f.Where,
		URL:               f.URL,
		Sessions:          f.Sessions,
		Headful:           f.Headful,
		VerifyIdempotence: f.VerifyIdempotence,
		Report:            f.Report,
		MetricsFile:       f.MetricsFile,
		HistoryDSN:        f.HistoryDSN,
		LogLevel:          f.LogLevel,
		OpenFailures:      f.OpenFailures,
		Metadata:          f.Metadata,
	}
}
