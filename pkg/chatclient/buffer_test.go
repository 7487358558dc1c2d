package chatclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func msg(id int64) Message {
	return Message{
		ID:         id,
		LocationID: "loc-1",
		Message:    "msg",
		Timestamp:  time.Unix(id, 0),
	}
}

func ids(messages []Message) []int64 {
	out := make([]int64, len(messages))
	for i, m := range messages {
		out[i] = m.ID
	}
	return out
}

func TestBufferSeedAndAppend(t *testing.T) {
	b := NewBuffer()
	b.Seed([]Message{msg(10), msg(11), msg(12)})
	require.Equal(t, []int64{10, 11, 12}, ids(b.Messages()))

	require.True(t, b.Append(msg(13)))
	require.Equal(t, []int64{10, 11, 12, 13}, ids(b.Messages()))
}

func TestBufferAppendIgnoresDuplicates(t *testing.T) {
	b := NewBuffer()
	b.Seed([]Message{msg(10)})

	require.False(t, b.Append(msg(10)))
	require.Equal(t, 1, b.Len())
}

func TestBufferPrependKeepsOrderAndReportsShift(t *testing.T) {
	b := NewBuffer()
	b.Seed([]Message{msg(10), msg(11)})

	anchorIndex := b.IndexOf(10)
	require.Equal(t, 0, anchorIndex)

	inserted := b.Prepend([]Message{msg(7), msg(8), msg(9)})
	require.Equal(t, 3, inserted)
	require.Equal(t, []int64{7, 8, 9, 10, 11}, ids(b.Messages()))

	// Контракт прокрутки: прежнее сообщение сдвинулось ровно на inserted
	require.Equal(t, anchorIndex+inserted, b.IndexOf(10))
}

func TestBufferPrependSkipsKnownMessages(t *testing.T) {
	b := NewBuffer()
	b.Seed([]Message{msg(9), msg(10)})

	// Страница пересекается с уже загруженным
	inserted := b.Prepend([]Message{msg(8), msg(9)})
	require.Equal(t, 1, inserted)
	require.Equal(t, []int64{8, 9, 10}, ids(b.Messages()))
}

func TestBufferPrependAllKnownIsNoop(t *testing.T) {
	b := NewBuffer()
	b.Seed([]Message{msg(9), msg(10)})

	inserted := b.Prepend([]Message{msg(9), msg(10)})
	require.Zero(t, inserted)
	require.Equal(t, []int64{9, 10}, ids(b.Messages()))
}

func TestBufferOldest(t *testing.T) {
	b := NewBuffer()

	_, ok := b.Oldest()
	require.False(t, ok)

	b.Seed([]Message{msg(5), msg(6)})
	oldest, ok := b.Oldest()
	require.True(t, ok)
	require.Equal(t, int64(5), oldest.ID)
}

func TestBufferSeedResetsContents(t *testing.T) {
	b := NewBuffer()
	b.Seed([]Message{msg(1), msg(2)})
	b.Seed([]Message{msg(3)})

	require.Equal(t, []int64{3}, ids(b.Messages()))
	require.True(t, b.Append(msg(1)), "old contents must be forgotten after reseed")
}

func TestBufferMessagesIsACopy(t *testing.T) {
	b := NewBuffer()
	b.Seed([]Message{msg(1)})

	snapshot := b.Messages()
	snapshot[0].Message = "подмена"

	require.Equal(t, "msg", b.Messages()[0].Message)
}
