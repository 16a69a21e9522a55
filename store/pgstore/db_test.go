package pgstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/jrsteele09/go-ems-server/store"
	"github.com/jrsteele09/go-ems-server/store/pgstore"
	"github.com/jrsteele09/go-ems-server/store/storetest"
	"github.com/stretchr/testify/suite"
)

// TestPGStore needs a disposable database; every table is truncated per test.
func TestPGStore(t *testing.T) {
	dsn := os.Getenv("EMS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("EMS_TEST_POSTGRES_DSN not set")
	}

	suite.Run(t, &storetest.Suite{
		Open: func() (store.Store, error) {
			db, err := pgstore.Open(dsn)
			if err != nil {
				return nil, err
			}
			if err := db.Reset(context.Background()); err != nil {
				db.Close()
				return nil, err
			}
			return db, nil
		},
	})
}
