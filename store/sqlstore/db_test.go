package sqlstore_test

import (
	"testing"

	"github.com/jrsteele09/go-ems-server/store"
	"github.com/jrsteele09/go-ems-server/store/sqlstore"
	"github.com/jrsteele09/go-ems-server/store/storetest"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestSQLStore(t *testing.T) {
	suite.Run(t, &storetest.Suite{
		Open: func() (store.Store, error) {
			return sqlstore.Open(":memory:")
		},
	})
}

func TestOpen_File(t *testing.T) {
	path := t.TempDir() + "/data/ems.db"

	db, err := sqlstore.Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// parent directory created, migrations idempotent
	db, err = sqlstore.Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
