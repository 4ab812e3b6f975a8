package monitor

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"

	"github.com/cludbox/control-plane/internal/db/sqlc"
)

func sqlcVpsWithUsage(storage, cpu, mem int64) sqlc.Vps {
	return sqlc.Vps{
		StorageUsedBytes:    storage,
		CpuUsedMs:           pgtype.Int8{Int64: cpu, Valid: true},
		MemoryUsedMbSeconds: pgtype.Int8{Int64: mem, Valid: true},
	}
}

func TestPositiveDelta(t *testing.T) {
	ten := int64(10)
	five := int64(5)

	assert.Equal(t, int64(5), positiveDelta(&ten, pgtype.Int8{Int64: 5, Valid: true}))
	assert.Equal(t, int64(0), positiveDelta(&five, pgtype.Int8{Int64: 10, Valid: true}), "new < old after a restart yields zero, not negative")
	assert.Equal(t, int64(0), positiveDelta(nil, pgtype.Int8{Int64: 5, Valid: true}))
	assert.Equal(t, int64(0), positiveDelta(&ten, pgtype.Int8{}))
}

func TestInt64PtrToPgInt8(t *testing.T) {
	v := int64(42)
	got := int64PtrToPgInt8(&v)
	assert.True(t, got.Valid)
	assert.Equal(t, int64(42), got.Int64)

	assert.False(t, int64PtrToPgInt8(nil).Valid)
}

func TestStubCollectorEchoesExistingValues(t *testing.T) {
	vps := sqlcVpsWithUsage(100, 200, 300)
	m, err := StubCollector{}.Collect(nil, vps) //nolint:staticcheck // nil ctx: StubCollector never touches it.
	assert.NoError(t, err)
	assert.Equal(t, int64(100), m.StorageUsedBytes)
	assert.NotNil(t, m.CpuUsedMs)
	assert.Equal(t, int64(200), *m.CpuUsedMs)
	assert.NotNil(t, m.MemoryUsedMbSeconds)
	assert.Equal(t, int64(300), *m.MemoryUsedMbSeconds)
}
