package output

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisdamba/foodmarket/internal/models"
)

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	out := NewConsoleOutput(&buf)

	require.NoError(t, out.WriteMessage("penalty_level_events", []byte(`{"penaltyLevel":2}`)))
	require.NoError(t, out.Close())
	assert.Equal(t, "[penalty_level_events] {\"penaltyLevel\":2}\n", buf.String())
}

func TestJSONOutputPartitionsByDay(t *testing.T) {
	dir := t.TempDir()
	out := NewJSONOutput(dir, "events")

	// 2024-03-04T10:00:00Z
	msg := []byte(`{"timestamp":1709546400,"eventType":"commission_period_paid"}`)
	require.NoError(t, out.WriteMessage("commission_period_paid_events", msg))
	require.NoError(t, out.WriteMessage("commission_period_paid_events", msg))
	require.NoError(t, out.Close())

	path := filepath.Join(dir, "events", "commission_period_paid_events", "year=2024", "month=03", "day=04", "data.json")
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{string(msg), string(msg)}, lines)
}

func TestJSONOutputRejectsEventsWithoutTimestamp(t *testing.T) {
	out := NewJSONOutput(t.TempDir(), "events")
	defer out.Close()

	assert.Error(t, out.WriteMessage("t", []byte(`{"eventType":"x"}`)))
	assert.Error(t, out.WriteMessage("t", []byte(`not json`)))
}

func TestKafkaOutput(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"timestamp":1}` {
			return errors.New("unexpected payload " + string(val))
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	out := NewKafkaOutputWithProducer(producer)
	require.NoError(t, out.WriteMessage("penalty_level_events", []byte(`{"timestamp":1}`)))
	assert.ErrorIs(t, out.WriteMessage("penalty_level_events", []byte(`{}`)), sarama.ErrOutOfBrokers)

	require.NoError(t, out.Close())
	assert.Error(t, out.WriteMessage("penalty_level_events", []byte(`{}`)))
	require.NoError(t, out.Close())
}

func TestNewSelectsSink(t *testing.T) {
	out, err := New(&models.Config{OutputFormat: "console"})
	require.NoError(t, err)
	assert.IsType(t, &ConsoleOutput{}, out)

	out, err = New(&models.Config{OutputFormat: "json", OutputPath: t.TempDir(), OutputFolder: "events"})
	require.NoError(t, err)
	assert.IsType(t, &JSONOutput{}, out)

	_, err = New(&models.Config{OutputFormat: "avro"})
	assert.Error(t, err)
}
