package config

import (
	"strconv"
	"strings"
	"time"

	"os"

	"github.com/joho/godotenv"
)

// BotConfig holds the configuration for the bot.
type BotConfig struct {
	ApiId              int32         // ApiId is the Telegram API ID.
	ApiHash            string        // ApiHash is the Telegram API hash.
	Token              string        // Token is the bot token.
	MongoUri           string        // MongoUri is the MongoDB connection string.
	DbName             string        // DbName is the name of the database.
	OwnerId            int64         // OwnerId is the user ID of the bot owner.
	LoggerId           int64         // LoggerId is the chat ID for startup/log messages.
	ChannelId          int64         // ChannelId is an optional channel every delivered track is forwarded to.
	DownloadsDir       string        // DownloadsDir is the directory where downloads are stored.
	CacheFile          string        // CacheFile is the JSON file the file-id cache persists to.
	SearchTimeout      time.Duration // SearchTimeout is the inline search debounce delay.
	MaxPlaylistTracks  int           // MaxPlaylistTracks caps how many playlist tracks are shown inline.
	CacheExpiry        time.Duration // CacheExpiry is how long a cached Telegram file id stays valid.
	CacheSweepInterval time.Duration // CacheSweepInterval is how often expired cache entries are swept.
	FfmpegPath         string        // FfmpegPath is the ffmpeg binary used for remuxing and silence removal.
	DEVS               []int64       // DEVS is a list of developer user IDs.
}

// Conf is the global configuration for the bot.
var Conf *BotConfig

// LoadConfig loads the configuration from environment variables and sets the global Conf.
func LoadConfig() error {
	_ = godotenv.Load()

	Conf = &BotConfig{
		ApiId:              getEnvInt32("API_ID", 0),
		ApiHash:            os.Getenv("API_HASH"),
		Token:              os.Getenv("TOKEN"),
		MongoUri:           os.Getenv("MONGO_URI"),
		DbName:             getEnvStr("DB_NAME", "ScdlBot"),
		OwnerId:            getEnvInt64("OWNER_ID", 0),
		LoggerId:           getEnvInt64("LOGGER_ID", 0),
		ChannelId:          getEnvInt64("CHANNEL_ID", 0),
		DownloadsDir:       getEnvStr("DOWNLOADS_DIR", "downloads"),
		CacheFile:          getEnvStr("CACHE_FILE", "file_id_cache.json"),
		SearchTimeout:      getEnvDuration("SEARCH_TIMEOUT", 500*time.Millisecond),
		MaxPlaylistTracks:  int(getEnvInt64("MAX_PLAYLIST_TRACKS", 50)),
		CacheExpiry:        getEnvDuration("CACHE_EXPIRY", 7*24*time.Hour),
		CacheSweepInterval: getEnvDuration("CACHE_SWEEP_INTERVAL", time.Hour),
		FfmpegPath:         getEnvStr("FFMPEG_PATH", "ffmpeg"),
	}

	// Parse DEVS list
	devsEnv := os.Getenv("DEVS")
	if devsEnv != "" {
		for _, idStr := range strings.Fields(devsEnv) {
			if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
				Conf.DEVS = append(Conf.DEVS, id)
			}
		}
	}
	if Conf.OwnerId != 0 && !containsInt(Conf.DEVS, Conf.OwnerId) {
		Conf.DEVS = append(Conf.DEVS, Conf.OwnerId)
	}

	return Conf.validate()
}
