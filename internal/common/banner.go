package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the resolved runtime settings
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("Kintari", GetVersion())

	logger.Info().
		Str("version", GetVersion()).
		Str("environment", config.Environment).
		Str("badger_path", config.Storage.Badger.Path).
		Str("blob_dir", config.Storage.Blob.Dir).
		Str("chat_provider", config.Chat.Provider).
		Int("extraction_workers", config.Extraction.Workers).
		Msg("Kintari starting")
}
