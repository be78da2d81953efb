package output

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/chrisdamba/foodmarket/internal/models"
)

// OutputDestination receives JSON encoded accounting events keyed by topic.
type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleOutput{w: w}
}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, "[%s] %s\n", topic, msg); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error {
	return nil
}

// JSONOutput appends one event per line under
// basePath/folder/topic/year=YYYY/month=MM/day=DD/data.json.
type JSONOutput struct {
	basePath string
	folder   string
	mu       sync.Mutex
	files    map[string]*os.File
}

func NewJSONOutput(basePath, folder string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	var event struct {
		Timestamp int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(msg, &event); err != nil {
		return err
	}
	if event.Timestamp == 0 {
		return fmt.Errorf("invalid timestamp")
	}

	eventTime := time.Unix(event.Timestamp, 0).UTC()
	year, month, day := eventTime.Date()
	partitionPath := fmt.Sprintf("year=%d/month=%02d/day=%02d", year, month, day)
	fullPath := filepath.Join(j.basePath, j.folder, topic, partitionPath)

	j.mu.Lock()
	defer j.mu.Unlock()

	fileKey := topic + "_" + partitionPath
	file, ok := j.files[fileKey]
	if !ok {
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return err
		}
		var err error
		file, err = os.OpenFile(filepath.Join(fullPath, "data.json"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		j.files[fileKey] = file
	}

	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err := file.WriteString("\n")
	return err
}

func (j *JSONOutput) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	var lastErr error
	for key, file := range j.files {
		if err := file.Close(); err != nil {
			lastErr = err
			log.Printf("[output] error closing %s: %v", key, err)
		}
		delete(j.files, key)
	}
	return lastErr
}

type KafkaOutput struct {
	producer sarama.SyncProducer
}

func NewKafkaOutput(config *models.Config) (*KafkaOutput, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	brokerList := strings.Split(config.KafkaBrokerList, ",")
	producer, err := sarama.NewSyncProducer(brokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	log.Printf("[output] sarama producer created with brokers %v", brokerList)
	return NewKafkaOutputWithProducer(producer), nil
}

func NewKafkaOutputWithProducer(producer sarama.SyncProducer) *KafkaOutput {
	return &KafkaOutput{producer: producer}
}

func (k *KafkaOutput) WriteMessage(topic string, msg []byte) error {
	if k.producer == nil {
		return fmt.Errorf("kafka producer is closed")
	}
	_, _, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		log.Printf("[output] failed to send message to topic %s: %v", topic, err)
		return err
	}
	return nil
}

func (k *KafkaOutput) Close() error {
	if k.producer == nil {
		return nil
	}
	err := k.producer.Close()
	k.producer = nil
	return err
}

// New picks the event sink: Kafka when enabled, otherwise the configured
// output format.
func New(config *models.Config) (OutputDestination, error) {
	if config.KafkaEnabled {
		return NewKafkaOutput(config)
	}
	switch config.OutputFormat {
	case "json":
		return NewJSONOutput(config.OutputPath, config.OutputFolder), nil
	case "", "console":
		return NewConsoleOutput(os.Stdout), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", config.OutputFormat)
	}
}
