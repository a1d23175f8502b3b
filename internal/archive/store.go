package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jgrandin/wxpost/internal/wx"
)

// ErrNoData is returned when the archive has no row satisfying a query.
var ErrNoData = errors.New("no archive data")

// selectColumns is the column list every row query shares. dateTime is
// epoch seconds, the rest are nullable REALs in station units.
const selectColumns = `dateTime, outTemp, dewpoint, outHumidity, windSpeed,
	windGust, windDir, barometer, rainRate, dayRain, radiation`

// observationColumns are the columns LastNonNull may be asked about.
// Acts as a whitelist since column names cannot be bound parameters.
var observationColumns = map[string]bool{
	"outTemp": true, "dewpoint": true, "outHumidity": true,
	"windSpeed": true, "windGust": true, "windDir": true,
	"barometer": true, "rainRate": true, "dayRain": true,
	"radiation": true,
}

// Store reads a station archive database: a single `archive` table of
// timestamped sensor rows, one writer (the station software) and this
// process as a reader.
type Store struct {
	db      *sql.DB
	station string
}

// Open opens the archive database at path. station names the rows it
// returns; the archive itself does not carry one.
func Open(path, station string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}
	return &Store{db: db, station: station}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the archive table if it does not exist. The
// station software normally owns the schema; this exists for tooling
// and tests.
func (s *Store) EnsureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS archive (
			dateTime INTEGER NOT NULL PRIMARY KEY,
			outTemp REAL,
			dewpoint REAL,
			outHumidity REAL,
			windSpeed REAL,
			windGust REAL,
			windDir REAL,
			barometer REAL,
			rainRate REAL,
			dayRain REAL,
			radiation REAL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating archive table: %w", err)
	}
	return nil
}

// Insert writes one observation row. Used by tooling and tests.
func (s *Store) Insert(ctx context.Context, obs wx.Observation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO archive (dateTime, outTemp, dewpoint, outHumidity,
			windSpeed, windGust, windDir, barometer, rainRate, dayRain, radiation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		obs.Time.Unix(), obs.OutTempF, obs.DewpointF, obs.OutHumidity,
		obs.WindSpeedMph, obs.WindGustMph, obs.WindDirDeg,
		obs.BarometerInHg, obs.RainRateInHr, obs.DayRainIn, obs.RadiationWm2,
	)
	if err != nil {
		return fmt.Errorf("inserting archive row: %w", err)
	}
	return nil
}

// Latest returns the most recent observation row.
func (s *Store) Latest(ctx context.Context) (wx.Observation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM archive ORDER BY dateTime DESC LIMIT 1`)
	return s.scan(row)
}

// Nearest returns the row whose timestamp is closest to target within
// ±window, or ErrNoData when the window is empty.
func (s *Store) Nearest(ctx context.Context, target time.Time, window time.Duration) (wx.Observation, error) {
	ts := target.Unix()
	lo := target.Add(-window).Unix()
	hi := target.Add(window).Unix()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM archive
		 WHERE dateTime BETWEEN ? AND ?
		 ORDER BY ABS(dateTime - ?) LIMIT 1`, lo, hi, ts)
	return s.scan(row)
}

// LastNonNull returns the most recent non-null value of a single sensor
// column.
func (s *Store) LastNonNull(ctx context.Context, column string) (*float64, error) {
	if !observationColumns[column] {
		return nil, fmt.Errorf("unknown archive column %q", column)
	}

	var v float64
	err := s.db.QueryRowContext(ctx,
		`SELECT `+column+` FROM archive WHERE `+column+` IS NOT NULL
		 ORDER BY dateTime DESC LIMIT 1`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("querying last %s: %w", column, err)
	}
	return &v, nil
}

// NewerThan returns all rows strictly after since, oldest first. An
// empty result is not an error; the continuous-mode watcher polls with
// it.
func (s *Store) NewerThan(ctx context.Context, since time.Time) ([]wx.Observation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM archive WHERE dateTime > ? ORDER BY dateTime ASC`,
		since.Unix())
	if err != nil {
		return nil, fmt.Errorf("querying new archive rows: %w", err)
	}
	defer rows.Close()

	var out []wx.Observation
	for rows.Next() {
		obs, err := s.scanRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, obs)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scan(row scanner) (wx.Observation, error) {
	var (
		ts  int64
		obs wx.Observation
		f   [10]sql.NullFloat64
	)

	err := row.Scan(&ts, &f[0], &f[1], &f[2], &f[3], &f[4], &f[5], &f[6], &f[7], &f[8], &f[9])
	if errors.Is(err, sql.ErrNoRows) {
		return wx.Observation{}, ErrNoData
	}
	if err != nil {
		return wx.Observation{}, fmt.Errorf("scanning archive row: %w", err)
	}

	obs.Time = time.Unix(ts, 0).UTC()
	obs.Station = s.station
	obs.OutTempF = nullable(f[0])
	obs.DewpointF = nullable(f[1])
	obs.OutHumidity = nullable(f[2])
	obs.WindSpeedMph = nullable(f[3])
	obs.WindGustMph = nullable(f[4])
	obs.WindDirDeg = nullable(f[5])
	obs.BarometerInHg = nullable(f[6])
	obs.RainRateInHr = nullable(f[7])
	obs.DayRainIn = nullable(f[8])
	obs.RadiationWm2 = nullable(f[9])
	return obs, nil
}

func (s *Store) scanRows(rows *sql.Rows) (wx.Observation, error) {
	return s.scan(rows)
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
