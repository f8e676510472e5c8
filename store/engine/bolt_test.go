package engine

import (
	"os"
	"testing"
	"time"

	"github.com/nvkalinin/week-of-month/store"
	"github.com/nvkalinin/week-of-month/week"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

var sample2023 = store.Months{
	time.January: store.Days{
		1: jan1,
		2: store.Day{WeekDay: store.Monday, Week: week.Result{Year: 2023, Month: time.January, Week: 1}},
	},
	time.February: store.Days{
		1: store.Day{WeekDay: store.Wednesday, Week: week.Result{Year: 2023, Month: time.February, Week: 1}},
	},
}

func TestBolt(t *testing.T) {
	b, _ := makeBolt(t)
	defer b.Close()

	// Пустая БД.
	_, ok := b.FindYear(2023)
	assert.False(t, ok)
	_, ok = b.FindMonth(2023, time.January)
	assert.False(t, ok)

	err := b.PutYear(2023, sample2023)
	require.NoError(t, err)

	y, ok := b.FindYear(2023)
	assert.True(t, ok)
	assert.Equal(t, sample2023, y)

	m, ok := b.FindMonth(2023, time.February)
	assert.True(t, ok)
	assert.Equal(t, sample2023[time.February], m)

	d, ok := b.FindDay(2023, time.January, 1)
	assert.True(t, ok)
	assert.Equal(t, jan1, *d)

	_, ok = b.FindMonth(2023, time.March)
	assert.False(t, ok)

	_, ok = b.FindDay(2023, time.January, 3)
	assert.False(t, ok)

	y, ok = b.FindYear(2024)
	assert.False(t, ok)
	assert.Nil(t, y)
}

func TestBolt_yearPrefix(t *testing.T) {
	b, _ := makeBolt(t)
	defer b.Close()

	// /202/ не должен захватывать ключи /2023/.
	require.NoError(t, b.PutYear(2023, sample2023))
	require.NoError(t, b.PutYear(202, store.Months{time.May: {1: jan1}}))

	y, ok := b.FindYear(202)
	assert.True(t, ok)
	assert.Equal(t, store.Months{time.May: {1: jan1}}, y)
}

func TestBolt_corrupted(t *testing.T) {
	b, _ := makeBolt(t)
	defer b.Close()

	require.NoError(t, b.PutYear(2023, sample2023))
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(calBucket))
		if err := bucket.Put(monthKey(2023, time.January), []byte("{broken")); err != nil {
			return err
		}
		return bucket.Put([]byte("/2023/13"), []byte("{}"))
	})
	require.NoError(t, err)

	// Испорченный месяц не найден, остальные месяцы года на месте.
	_, ok := b.FindMonth(2023, time.January)
	assert.False(t, ok)
	_, ok = b.FindDay(2023, time.January, 1)
	assert.False(t, ok)

	y, ok := b.FindYear(2023)
	assert.True(t, ok)
	assert.Equal(t, store.Months{time.February: sample2023[time.February]}, y)
}

func TestBolt_backup(t *testing.T) {
	b, dir := makeBolt(t)

	err := b.PutYear(2023, sample2023)
	require.NoError(t, err)

	f, err := os.Create(dir + "/backup.bolt")
	require.NoError(t, err)

	err = b.Backup(f)
	require.NoError(t, err)

	err = f.Close()
	require.NoError(t, err)
	err = b.Close()
	require.NoError(t, err)

	// Открыть Bolt из бекапа и проверить, что все данные там.
	b, err = NewBolt(dir + "/backup.bolt")
	require.NoError(t, err)
	defer b.Close()

	y, ok := b.FindYear(2023)
	assert.True(t, ok)
	assert.Equal(t, sample2023, y)
}

func makeBolt(t *testing.T) (b *Bolt, dir string) {
	dir = t.TempDir()
	b, err := NewBolt(dir + "/db.bolt")
	require.NoError(t, err)
	return b, dir
}
