package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/nhirsama/GasSentinel-Gateway/src/inter"
	_ "modernc.org/sqlite"
)

// SqliteSink 将数据点写入本地 SQLite 文件，适合没有 InfluxDB 的单机部署
type SqliteSink struct {
	db *sql.DB
}

func NewSqliteSink(dbPath string) (*SqliteSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// 每个 bucket 对应一组行，按 (bucket, device, time) 查询
	schema := `
    CREATE TABLE IF NOT EXISTS data_points (
       bucket       TEXT NOT NULL,
       device_eui64 TEXT NOT NULL,
       temp         REAL,
       hum          REAL,
       pres         REAL,
       cl1          REAL,
       cl2          REAL,
       rssi         REAL,
       vbat         REAL,
       time         BIGINT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_points_query ON data_points (bucket, device_eui64, time);
    `

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("DataStore: SQLite 已就绪 (%s)", dbPath)
	return &SqliteSink{db: db}, nil
}

// Write 在一个事务内写入全部数据点
func (s *SqliteSink) Write(ctx context.Context, destination string, points []inter.DataPoint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// 中途返回错误时自动回滚
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO data_points (bucket, device_eui64, temp, hum, pres, cl1, cl2, rssi, vbat, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, destination, p.DeviceID,
			p.Temperature, p.Humidity, p.Pressure, p.CL1, p.CL2, p.RSSI, p.VBat,
			p.Time.UnixNano(),
		); err != nil {
			return fmt.Errorf("写入设备 %s 失败: %w", p.DeviceID, err)
		}
	}

	return tx.Commit()
}

func (s *SqliteSink) Close() error {
	return s.db.Close()
}
