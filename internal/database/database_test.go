package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestCacheConstants(t *testing.T) {
	assert.Equal(t, 0, GENERAL_CACHE_INDEX)
	assert.Equal(t, 1, EVENTS_CACHE_INDEX)
}

func TestCacheBuilder_NilClient(t *testing.T) {
	var result map[string]string

	found, err := NewCacheBuilder(nil, "cost_index").WithContext(context.Background()).Get(&result)
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrCacheUnavailable)

	err = NewCacheBuilder(nil, "cost_index").WithStruct(map[string]int{"a": 1}).Set()
	assert.ErrorIs(t, err, ErrCacheUnavailable)

	assert.ErrorIs(t, NewCacheBuilder(nil, uuid.Nil).Delete(), ErrCacheUnavailable)
}

func TestCacheBuilder_Keys(t *testing.T) {
	id := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")

	assert.Equal(t, "series", NewCacheBuilder(nil, "series").Key())
	assert.Equal(t, "cost_index:series", NewCacheBuilder(nil, "series").WithHash("cost_index").Key())
	assert.Equal(t, "apartment:"+id.String(), NewCacheBuilder(nil, id).WithHash("apartment").Key())
}

func TestCreateIndexes(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	for range indexes {
		mock.ExpectExec("CREATE (UNIQUE )?INDEX IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, CreateIndexes(gormDB))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_SQLWithContext(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "trace")

	db := DB{SQL: gormDB}
	assert.Equal(t, ctx, db.SQLWithContext(ctx).Statement.Context)
}
