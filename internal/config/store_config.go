package config

const (
	StoreDriverSqlite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

type StoreConfig interface {
	GetStoreDriver() string
	GetSqlitePath() string
	GetPostgresDSN() string
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetStoreDriver() string {
	if GetEnv("STORE_DRIVER", StoreDriverSqlite) == StoreDriverPostgres {
		return StoreDriverPostgres
	}
	return StoreDriverSqlite
}

func (Store) GetSqlitePath() string {
	return GetEnv("DB_PATH", "./data/ems.db")
}

func (Store) GetPostgresDSN() string {
	return GetEnv("DATABASE_URL", "host=localhost user=postgres dbname=ems port=5432 sslmode=disable")
}
