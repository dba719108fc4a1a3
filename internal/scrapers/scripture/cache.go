package scripture

import (
	"bytes"
	"context"
	"encoding/gob"
	"net/url"
	"scripture-scraper/internal/components/chrono"

	"github.com/PuerkitoBio/purell"
	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var errWebpageNotFound = badger.ErrKeyNotFound

type webpage struct {
	// utf-8 encoded body
	Contents []byte
	// 0 means the page never expires
	ExpiresAt int64
}

type webpageCache struct {
	db      *badger.DB
	baseUrl *url.URL
	clock   chrono.API
}

func (c webpageCache) key(address string) (string, error) {
	full, err := c.baseUrl.Parse(address)
	if err != nil {
		return "", err
	}
	normalized := purell.NormalizeURL(
		full,
		purell.FlagsSafe|
			purell.FlagsUsuallySafeNonGreedy|
			purell.FlagRemoveDirectoryIndex|
			purell.FlagRemoveFragment|
			purell.FlagSortQuery,
	)
	return "page:" + normalized, nil
}

func (c webpageCache) get(ctx context.Context, address string) (webpage, error) {
	_, span := tracer.Start(ctx, "cache:get")
	defer span.End()

	key, err := c.key(address)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return webpage{}, err
	}
	span.SetAttributes(attribute.String("cache_key", key))

	var serialized []byte
	err = c.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(key))
		if err != nil {
			return err
		}
		serialized, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return webpage{}, errWebpageNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read item from badger")
		return webpage{}, err
	}

	var cached webpage
	err = gob.NewDecoder(bytes.NewBuffer(serialized)).Decode(&cached)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to deserialize cached item")
		return webpage{}, err
	}

	if cached.ExpiresAt > 0 && c.clock.Now().Unix() >= cached.ExpiresAt {
		span.AddEvent("delete expired cache key", trace.WithAttributes(
			attribute.String("key", key),
		))
		err = c.db.Update(func(tx *badger.Txn) error {
			return tx.Delete([]byte(key))
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to delete expired key")
		}
		return webpage{}, errWebpageNotFound
	}

	span.AddEvent(
		"successfully returned cached webpage",
		trace.WithAttributes(attribute.Int("contentlength", len(cached.Contents))),
	)
	return cached, nil
}

func (c webpageCache) set(ctx context.Context, address string, page webpage) error {
	_, span := tracer.Start(ctx, "cache:set")
	defer span.End()

	key, err := c.key(address)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return err
	}
	span.SetAttributes(attribute.String("cache_key", key))

	serialized := bytes.NewBuffer(nil)
	err = gob.NewEncoder(serialized).Encode(page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize webpage")
		return err
	}

	err = c.db.Update(func(tx *badger.Txn) error {
		return tx.Set([]byte(key), serialized.Bytes())
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to set badger item")
		return err
	}
	return nil
}
