// Connectivity smoke test for a deployed stack: Redis, the meme endpoint
// and (optionally) Kafka. Each check prints what it saw so a failing
// environment is easy to diagnose.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/redis/go-redis/v9"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func getenv(key, def string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return def
}

func testRedis(ctx context.Context, addr string) error {
	fmt.Println("Redis test")
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
	})
	defer func() { _ = client.Close() }()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	if err := client.Set(ctx, "smoketest:hello", "world", 30*time.Second).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	val, err := client.Get(ctx, "smoketest:hello").Result()
	if err != nil {
		return fmt.Errorf("redis get: %w", err)
	}
	fmt.Println("redis GET smoketest:hello:", val)
	return nil
}

func testMemeEndpoint(baseURL string) error {
	fmt.Println("Meme endpoint test")

	memeURL := fmt.Sprintf("%s/meme?query=%s&ref=smoketest",
		strings.TrimRight(baseURL, "/"), url.QueryEscape("smoke test"))
	resp, err := http.Get(memeURL)
	if err != nil {
		return fmt.Errorf("http get meme: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("meme status %d: %s", resp.StatusCode, string(b))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read meme body: %w", err)
	}
	if !bytes.HasPrefix(body, pngMagic) {
		return fmt.Errorf("meme body is not a PNG (%d bytes)", len(body))
	}
	fmt.Printf("meme: %d bytes of PNG\n", len(body))
	return nil
}

func testKafka(brokers []string, topic string) error {
	fmt.Println("Kafka test")

	// Configure sarama and produce a usage event
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Version = sarama.V2_5_0_0
	prod, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return fmt.Errorf("producer create: %w", err)
	}
	defer func() { _ = prod.Close() }()

	payload := map[string]any{
		"ip":     "127.0.0.1",
		"ref":    "smoketest",
		"query":  "smoke test",
		"output": "✅",
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
	}
	msgBytes, _ := json.Marshal(payload)
	_, _, err = prod.SendMessage(&sarama.ProducerMessage{
		Topic: topic, Value: sarama.ByteEncoder(msgBytes),
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	fmt.Println("produced one usage event")

	// Consume it back
	consumer, err := sarama.NewConsumer(brokers, cfg)
	if err != nil {
		return fmt.Errorf("consumer create: %w", err)
	}
	defer func() { _ = consumer.Close() }()

	pc, err := consumer.ConsumePartition(topic, 0, sarama.OffsetNewest)
	if err != nil {
		pc, err = consumer.ConsumePartition(topic, 0, sarama.OffsetOldest)
		if err != nil {
			return fmt.Errorf("consume partition: %w", err)
		}
	}
	defer func() { _ = pc.Close() }()

	select {
	case m := <-pc.Messages():
		fmt.Println("consumed:", string(m.Value))
	case <-time.After(5 * time.Second):
		fmt.Println("no message consumed (timeout)")
	}

	return nil
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	redisAddr := getenv("REDIS_ADDR", "localhost:6379")
	serverURL := getenv("MEMECARD_URL", "http://localhost:8080")
	brokers := strings.Split(getenv("KAFKA_BROKERS", "localhost:9092"), ",")
	topic := getenv("KAFKA_TOPIC", "meme-usage")

	if err := testRedis(ctx, redisAddr); err != nil {
		fmt.Println("Redis error:", err)
		return
	}
	if err := testMemeEndpoint(serverURL); err != nil {
		fmt.Println("Meme endpoint error:", err)
		return
	}
	if getenv("USAGE_EVENTS_ENABLED", "false") == "true" {
		if err := testKafka(brokers, topic); err != nil {
			fmt.Println("Kafka error:", err)
			return
		}
	}
	fmt.Println("All tests completed")
}
