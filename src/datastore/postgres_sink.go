package datastore

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nhirsama/GasSentinel-Gateway/src/inter"
)

// PostgresSink 写入 PostgreSQL (可选 TimescaleDB hypertable)
type PostgresSink struct {
	pool *pgxpool.Pool
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS data_points (
    bucket       TEXT NOT NULL,
    device_eui64 TEXT NOT NULL,
    temp         DOUBLE PRECISION,
    hum          DOUBLE PRECISION,
    pres         DOUBLE PRECISION,
    cl1          DOUBLE PRECISION,
    cl2          DOUBLE PRECISION,
    rssi         DOUBLE PRECISION,
    vbat         DOUBLE PRECISION,
    time         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_points_query ON data_points (bucket, device_eui64, time);
`

const postgresInsert = `
INSERT INTO data_points (bucket, device_eui64, temp, hum, pres, cl1, cl2, rssi, vbat, time)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("连接 PostgreSQL 失败: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("PostgreSQL 不可达: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("初始化表结构失败: %w", err)
	}

	log.Printf("DataStore: PostgreSQL 已就绪")
	return &PostgresSink{pool: pool}, nil
}

// Write 在一个事务内批量写入
func (s *PostgresSink) Write(ctx context.Context, destination string, points []inter.DataPoint) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range points {
			batch.Queue(postgresInsert, destination, p.DeviceID,
				p.Temperature, p.Humidity, p.Pressure, p.CL1, p.CL2, p.RSSI, p.VBat, p.Time)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}
