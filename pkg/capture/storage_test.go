package capture

import (
	"testing"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(i int) Record {
	return Record{
		ReceivedAt: time.Unix(1700000000+int64(i), 0),
		Peer:       "pipe:0:17754",
		Data:       []byte{0x08, 0x00, byte(i)},
	}
}

// storageSuite runs the Storage contract against an implementation.
func storageSuite(t *testing.T, open func(t *testing.T, maxRecords int) Storage) {
	t.Run("save and get", func(t *testing.T) {
		s := open(t, 0)
		defer s.Close()

		rec := testRecord(1)
		id, err := s.Save(rec)
		require.NoError(t, err)
		assert.Equal(t, rec.ReceivedAt.Unix(), id.Time().Unix())

		got, err := s.Get(id)
		require.NoError(t, err)
		assert.Equal(t, rec.Peer, got.Peer)
		assert.Equal(t, rec.Data, got.Data)
		assert.True(t, got.ReceivedAt.Equal(rec.ReceivedAt))
	})

	t.Run("get missing", func(t *testing.T) {
		s := open(t, 0)
		defer s.Close()

		_, err := s.Get(ksuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		s := open(t, 0)
		defer s.Close()

		for i := 0; i < 5; i++ {
			_, err := s.Save(testRecord(i))
			require.NoError(t, err)
		}

		entries, err := s.List(3)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, byte(4), entries[0].Record.Data[2])
		assert.Equal(t, byte(3), entries[1].Record.Data[2])
		assert.Equal(t, byte(2), entries[2].Record.Data[2])

		all, err := s.List(0)
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("list orders within a second", func(t *testing.T) {
		s := open(t, 0)
		defer s.Close()

		base := time.Unix(1700000000, 0)
		for i := 0; i < 20; i++ {
			rec := testRecord(i)
			rec.ReceivedAt = base.Add(time.Duration(i) * time.Millisecond)
			_, err := s.Save(rec)
			require.NoError(t, err)
		}

		entries, err := s.List(0)
		require.NoError(t, err)
		require.Len(t, entries, 20)
		for i, e := range entries {
			assert.Equal(t, byte(19-i), e.Record.Data[2], "entry %d", i)
		}
	})

	t.Run("equal times keep save order", func(t *testing.T) {
		s := open(t, 0)
		defer s.Close()

		for i := 0; i < 10; i++ {
			rec := testRecord(0)
			rec.Data[2] = byte(i)
			_, err := s.Save(rec)
			require.NoError(t, err)
		}

		entries, err := s.List(0)
		require.NoError(t, err)
		require.Len(t, entries, 10)
		for i, e := range entries {
			assert.Equal(t, byte(9-i), e.Record.Data[2], "entry %d", i)
		}
	})

	t.Run("evicts oldest within a second", func(t *testing.T) {
		s := open(t, 5)
		defer s.Close()

		base := time.Unix(1700000000, 0)
		var ids []ksuid.KSUID
		for i := 0; i < 20; i++ {
			rec := testRecord(i)
			rec.ReceivedAt = base.Add(time.Duration(i) * time.Millisecond)
			id, err := s.Save(rec)
			require.NoError(t, err)
			ids = append(ids, id)
		}

		for i, id := range ids {
			_, err := s.Get(id)
			if i < 15 {
				assert.ErrorIs(t, err, ErrNotFound, "record %d", i)
			} else {
				assert.NoError(t, err, "record %d", i)
			}
		}
		entries, err := s.List(0)
		require.NoError(t, err)
		require.Len(t, entries, 5)
		assert.Equal(t, byte(15), entries[4].Record.Data[2])
	})

	t.Run("evicts oldest", func(t *testing.T) {
		s := open(t, 2)
		defer s.Close()

		var ids []ksuid.KSUID
		for i := 0; i < 4; i++ {
			id, err := s.Save(testRecord(i))
			require.NoError(t, err)
			ids = append(ids, id)
		}

		_, err := s.Get(ids[0])
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.Get(ids[1])
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.Get(ids[3])
		assert.NoError(t, err)

		entries, err := s.List(0)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("closed", func(t *testing.T) {
		s := open(t, 0)
		require.NoError(t, s.Close())

		_, err := s.Save(testRecord(0))
		assert.ErrorIs(t, err, ErrClosed)
		_, err = s.List(0)
		assert.ErrorIs(t, err, ErrClosed)
	})
}

func TestMemoryStorage(t *testing.T) {
	storageSuite(t, func(t *testing.T, maxRecords int) Storage {
		return NewMemoryStorage(maxRecords)
	})
}

func TestMemoryStorageIsolation(t *testing.T) {
	s := NewMemoryStorage(0)
	rec := testRecord(0)
	id, err := s.Save(rec)
	require.NoError(t, err)

	rec.Data[0] = 0xff
	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, byte(0x08), got.Data[0])
}

func TestPebbleStorage(t *testing.T) {
	storageSuite(t, func(t *testing.T, maxRecords int) Storage {
		s, err := OpenPebble(t.TempDir(), maxRecords)
		require.NoError(t, err)
		return s
	})
}

func TestPebbleStorageReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenPebble(dir, 0)
	require.NoError(t, err)
	id, err := s.Save(testRecord(7))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenPebble(dir, 0)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 1, s.Len())
	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x08, 0x00, 0x07}, got.Data)

	// Saves after reopening sort after earlier ones with the same time.
	rec := testRecord(7)
	rec.Data[2] = 0x08
	_, err = s.Save(rec)
	require.NoError(t, err)
	entries, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, byte(0x08), entries[0].Record.Data[2])
	assert.Equal(t, id, entries[1].ID)
}
