package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	// ListeningPortKey is the port where the HTTP interface will listen on
	ListeningPortKey = "LISTENING_PORT"
	// DatadirKey is the local data directory to store the internal state of the daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// OperatorKey is the identity allowed to run plan-driven settlement and whitelist administration
	OperatorKey = "OPERATOR"
	// VaultAccountKey is the asset-ledger account holding escrowed funds
	VaultAccountKey = "VAULT_ACCOUNT"
	// AssetLedgerAddrKey is the address <host:port> of a remote asset ledger; empty runs the embedded in-memory one
	AssetLedgerAddrKey = "ASSET_LEDGER_ADDR"
	// KeyTickKey is the granularity in seconds of the time component of derived order keys
	KeyTickKey = "KEY_TICK"

	// DBBadger and DBInMemory are the supported DB_TYPE values
	DBBadger   = "badger"
	DBInMemory = "inmemory"

	DbLocation = "db"
)

var vip *viper.Viper

var defaultDatadir = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".otcd"
	}
	return filepath.Join(home, ".otcd")
}()

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("OTC")
	vip.AutomaticEnv()

	vip.SetDefault(ListeningPortKey, 9945)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(OperatorKey, "operator")
	vip.SetDefault(VaultAccountKey, "vault")
	vip.SetDefault(KeyTickKey, 3600)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetKeyTick returns the order-key time granularity.
func GetKeyTick() time.Duration {
	return time.Duration(GetInt(KeyTickKey)) * time.Second
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	switch dbType := GetString(DBTypeKey); dbType {
	case DBBadger, DBInMemory:
	default:
		return fmt.Errorf("unsupported database type: %s", dbType)
	}

	if GetString(OperatorKey) == "" {
		return fmt.Errorf("missing operator identity")
	}
	if GetString(VaultAccountKey) == "" {
		return fmt.Errorf("missing vault account")
	}
	if GetInt(KeyTickKey) <= 0 {
		return fmt.Errorf("%s must be positive", KeyTickKey)
	}

	return nil
}

func initDatadir() error {
	if GetString(DBTypeKey) != DBBadger {
		return nil
	}
	return makeDirectoryIfNotExists(filepath.Join(GetDatadir(), DbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
