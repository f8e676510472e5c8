package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nvkalinin/week-of-month/log"
	"github.com/nvkalinin/week-of-month/store"
	"go.etcd.io/bbolt"
)

const calBucket = "cal"

// Bolt хранит все данные в одном бакете (const calBucket).
// По ключу /<y>/<m> хранится JSON со всеми днями месяца. Оба ключа — числовые.
//
// Недели месяца всегда можно пересчитать, поэтому bolt здесь — кеш, переживающий перезапуск:
// сервер отдает предвычисленные календари и не считает их на каждый запрос к году.
type Bolt struct {
	db *bbolt.DB
}

func NewBolt(file string) (*Bolt, error) {
	b, err := bbolt.Open(file, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("cannot open bolt store: %w", err)
	}
	log.Printf("[DEBUG] store/bolt opened %s successfully", file)

	return &Bolt{
		db: b,
	}, nil
}

func (b *Bolt) Close() error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("cannot close bolt store: %w", err)
	}
	log.Printf("[DEBUG] store/bolt closed successfully")
	return nil
}

func (b *Bolt) FindDay(y int, mon time.Month, d int) (*store.Day, bool) {
	days, ok := b.FindMonth(y, mon)
	if !ok {
		return nil, false
	}

	day, ok := days[d]
	if !ok {
		return nil, false
	}

	return &day, true
}

func (b *Bolt) FindMonth(y int, mon time.Month) (store.Days, bool) {
	var days store.Days
	b.view(func(bucket *bbolt.Bucket) {
		key := monthKey(y, mon)
		val := bucket.Get(key)
		log.Printf("[DEBUG] store/bolt get key=%s len=%d", key, len(val))
		if val != nil {
			days = decodeMonth(key, val)
		}
	})
	return days, days != nil
}

// FindYear собирает год из ключей /<y>/<m>. Ключи в bolt отсортированы, поэтому достаточно
// встать на первый ключ с префиксом года и идти вперед, пока префикс совпадает.
func (b *Bolt) FindYear(y int) (store.Months, bool) {
	var months store.Months
	b.view(func(bucket *bbolt.Bucket) {
		prefix := []byte(fmt.Sprintf("/%d/", y))
		c := bucket.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			monNum, err := strconv.Atoi(string(bytes.TrimPrefix(k, prefix)))
			if err != nil || monNum < int(time.January) || monNum > int(time.December) {
				log.Printf("[WARN] store/bolt invalid month key: %s", k)
				continue
			}

			days := decodeMonth(k, v)
			if days == nil {
				continue
			}
			if months == nil {
				months = make(store.Months, 12)
			}
			months[time.Month(monNum)] = days
		}
		log.Printf("[DEBUG] store/bolt year %d: %d months", y, len(months))
	})
	return months, months != nil
}

// view вызывает fn в read-only транзакции. Если бакета еще нет, fn не вызывается.
func (b *Bolt) view(fn func(bucket *bbolt.Bucket)) {
	err := b.db.View(func(tx *bbolt.Tx) error {
		if bucket := tx.Bucket([]byte(calBucket)); bucket != nil {
			fn(bucket)
		}
		return nil
	})
	if err != nil {
		log.Printf("[WARN] store/bolt read failed: %v", err)
	}
}

// decodeMonth возвращает nil, если значение по ключу испорчено: такой месяц считается ненайденным.
func decodeMonth(key, val []byte) store.Days {
	var days store.Days
	if err := json.Unmarshal(val, &days); err != nil {
		log.Printf("[WARN] store/bolt invalid month calendar at %s: %v", key, err)
		return nil
	}
	return days
}

func (b *Bolt) PutYear(y int, data store.Months) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(calBucket))
		if err != nil {
			return fmt.Errorf("store/bolt cannot create bucket '%s': %w", calBucket, err)
		}

		for m, days := range data {
			key := monthKey(y, m)

			val, err := json.Marshal(days)
			if err != nil {
				return fmt.Errorf("store/bolt cannot marshal %s: %w", key, err)
			}

			log.Printf("[DEBUG] store/bolt put key=%s len=%d", key, len(val))
			if err := bucket.Put(key, val); err != nil {
				return fmt.Errorf("store/bolt cannot put %s: %w", key, err)
			}
		}
		return nil
	})
}

// Backup пишет в w консистентный снимок всей БД.
func (b *Bolt) Backup(w io.Writer) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		log.Printf("[DEBUG] store/bolt writing backup len=%d", tx.Size())
		_, err := tx.WriteTo(w)
		return err
	})
}

func monthKey(y int, m time.Month) []byte {
	return []byte(fmt.Sprintf("/%d/%d", y, m))
}
