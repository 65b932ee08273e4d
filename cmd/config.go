package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "mendc"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	envPrefix = "MENDC"

	tuiFlagName     = "tui"
	verboseFlagName = "verbose"
	labelsFlagName  = "labels"

	seedFlagName           = "seed"
	gccFlagName            = "gcc"
	ldflagsFlagName        = "ldflags"
	goodFlagName           = "good"
	badFlagName            = "bad"
	genFlagName            = "gen"
	popFlagName            = "pop"
	maxFlagName            = "max"
	mutFlagName            = "mut"
	insFlagName            = "ins"
	delFlagName            = "del"
	swapFlagName           = "swap"
	badFactorFlagName      = "bad-factor"
	goodPathFactorFlagName = "good-path-factor"
	jobsFlagName           = "jobs"

	seedConfigKey           = "repair.seed"
	gccConfigKey            = "repair.gcc"
	ldflagsConfigKey        = "repair.ldflags"
	goodConfigKey           = "repair.good"
	badConfigKey            = "repair.bad"
	genConfigKey            = "repair.generations"
	popConfigKey            = "repair.population"
	maxConfigKey            = "repair.max_fitness"
	mutConfigKey            = "repair.mutation_chance"
	insConfigKey            = "repair.ins_chance"
	delConfigKey            = "repair.del_chance"
	swapConfigKey           = "repair.swap_chance"
	badFactorConfigKey      = "repair.bad_factor"
	goodPathFactorConfigKey = "repair.good_path_factor"
	jobsConfigKey           = "repair.jobs"
	labelsConfigKey         = "repair.labels"

	defaultSeed           = 0
	defaultGcc            = "gcc"
	defaultLdflags        = ""
	defaultGood           = "./test-good.sh"
	defaultBad            = "./test-bad.sh"
	defaultGenerations    = 10
	defaultPopulation     = 40
	defaultMaxFitness     = 15.0
	defaultMutChance      = 0.2
	defaultInsChance      = 1.0
	defaultDelChance      = 1.0
	defaultSwapChance     = 1.0
	defaultBadFactor      = 10.0
	defaultGoodPathFactor = 0.0
	defaultJobs           = 1

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)

	viper.SetDefault(seedConfigKey, defaultSeed)
	viper.SetDefault(gccConfigKey, defaultGcc)
	viper.SetDefault(ldflagsConfigKey, defaultLdflags)
	viper.SetDefault(goodConfigKey, defaultGood)
	viper.SetDefault(badConfigKey, defaultBad)
	viper.SetDefault(genConfigKey, defaultGenerations)
	viper.SetDefault(popConfigKey, defaultPopulation)
	viper.SetDefault(maxConfigKey, defaultMaxFitness)
	viper.SetDefault(mutConfigKey, defaultMutChance)
	viper.SetDefault(insConfigKey, defaultInsChance)
	viper.SetDefault(delConfigKey, defaultDelChance)
	viper.SetDefault(swapConfigKey, defaultSwapChance)
	viper.SetDefault(badFactorConfigKey, defaultBadFactor)
	viper.SetDefault(goodPathFactorConfigKey, defaultGoodPathFactor)
	viper.SetDefault(jobsConfigKey, defaultJobs)
	viper.SetDefault(labelsConfigKey, false)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, "")
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger points the global slog logger at the run's debug file.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = "." + configBaseName + ".log"
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
