package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	keyPrefix     = "doc:"
	channelPrefix = "docstore:"
)

// Redis stores each collection as a hash (doc:<path>) and announces writes
// on a pub/sub channel (docstore:<path>). Subscribers re-read the hash on
// every notification so each delivery is a full replacement snapshot.
type Redis struct {
	client *redis.Client
	log    logrus.FieldLogger
}

func NewRedis(client *redis.Client, log logrus.FieldLogger) *Redis {
	return &Redis{
		client: client,
		log:    log.WithField("component", "docstore"),
	}
}

// ConnectRedis parses a redis:// URL and verifies the server answers.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (r *Redis) Get(ctx context.Context, path string) (Snapshot, error) {
	path, err := cleanPath(path)
	if err != nil {
		return Snapshot{}, err
	}

	fields, err := r.client.HGetAll(ctx, keyPrefix+path).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", path, err)
	}

	docs := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		docs[k] = json.RawMessage(v)
	}
	return newSnapshot(path, docs), nil
}

func (r *Redis) Set(ctx context.Context, path string, value any) error {
	parent, key, err := splitPath(path)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, keyPrefix+parent, key, string(raw))
		pipe.Publish(ctx, channelPrefix+parent, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, path string) error {
	parent, key, err := splitPath(path)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, keyPrefix+parent, key)
		pipe.Publish(ctx, channelPrefix+parent, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (r *Redis) Subscribe(ctx context.Context, path string) (*Subscription, error) {
	path, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	ps := r.client.Subscribe(ctx, channelPrefix+path)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", path, err)
	}
	messages := ps.Channel()

	loopCtx, cancel := context.WithCancel(context.Background())
	sub := newSubscription(path, func() {
		cancel()
		if err := ps.Close(); err != nil {
			r.log.WithField("path", path).WithError(err).Warn("pubsub close failed")
		}
	})
	context.AfterFunc(ctx, sub.Close)

	go r.listen(loopCtx, sub, messages)
	return sub, nil
}

func (r *Redis) listen(ctx context.Context, sub *Subscription, messages <-chan *redis.Message) {
	snap, err := r.Get(ctx, sub.Path)
	if err != nil {
		sub.terminate(err)
		return
	}
	sub.deliver(snap)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-messages:
			if !ok {
				sub.terminate(ErrClosed)
				return
			}
			snap, err := r.Get(ctx, sub.Path)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				r.log.WithField("path", sub.Path).WithError(err).Error("snapshot refresh failed")
				sub.terminate(err)
				return
			}
			sub.deliver(snap)
		}
	}
}
