package score

import (
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ChickenPige0n/prpr/internal/game"
)

type DefaultStore struct {
	// Path locates the sqlite file; empty means ./scores.db in the
	// working directory.
	Path string

	db *sql.DB
}

// recordCompact is the columnar wire form of an input stream. Parallel
// arrays keep the event order exact, which replays depend on.
type recordCompact struct {
	Kinds  []uint8
	IDs    []int
	Xs     []float64
	Ys     []float64
	Times  []float64
	Synths []bool
}

func compactInputs(inputs []game.Input) recordCompact {
	c := recordCompact{
		Kinds:  make([]uint8, 0, len(inputs)),
		IDs:    make([]int, 0, len(inputs)),
		Xs:     make([]float64, 0, len(inputs)),
		Ys:     make([]float64, 0, len(inputs)),
		Times:  make([]float64, 0, len(inputs)),
		Synths: make([]bool, 0, len(inputs)),
	}
	for _, in := range inputs {
		c.Kinds = append(c.Kinds, uint8(in.Kind))
		c.IDs = append(c.IDs, in.ID)
		c.Xs = append(c.Xs, in.X)
		c.Ys = append(c.Ys, in.Y)
		c.Times = append(c.Times, in.Time)
		c.Synths = append(c.Synths, in.Synthetic)
	}
	return c
}

func uncompactInputs(c recordCompact) ([]game.Input, error) {
	n := len(c.Kinds)
	if len(c.IDs) != n || len(c.Xs) != n || len(c.Ys) != n || len(c.Times) != n || len(c.Synths) != n {
		return nil, fmt.Errorf("compact input arrays disagree on length")
	}
	inputs := make([]game.Input, n)
	for i := 0; i < n; i++ {
		inputs[i] = game.Input{
			Kind:      game.InputKind(c.Kinds[i]),
			ID:        c.IDs[i],
			X:         c.Xs[i],
			Y:         c.Ys[i],
			Time:      c.Times[i],
			Synthetic: c.Synths[i],
		}
	}
	return inputs, nil
}

func (s *DefaultStore) Init() error {
	path := s.Path
	if path == "" {
		path = "./scores.db"
	}
	db, err := sql.Open("sqlite3", path)
	if nil != err {
		return err
	}

	initStatement := `
	create table if not exists scores
	  (
		  id integer not null primary key,
		  sum text,
		  rate real,
		  score integer,
		  inputs bytearray
	  );
	`
	if _, err := db.Exec(initStatement); nil != err {
		return err
	}

	s.db = db
	return nil
}

func (s *DefaultStore) Deinit() {
	if nil != s.db {
		s.db.Close()
	}
}

// hashChart digests the judgable content of a chart so sessions stay
// attached to the exact chart they were played on.
func hashChart(c *game.Chart) string {
	h := sha256.New()
	word := func(v float64) {
		binary.Write(h, binary.LittleEndian, math.Float64bits(v))
	}
	for _, l := range c.Lines {
		for _, n := range l.Notes {
			h.Write([]byte{byte(n.Kind)})
			word(n.Time)
			word(n.TimeEnd)
			word(n.PosX)
		}
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func (s *DefaultStore) Save(c *game.Chart, record *Record) error {
	data, err := json.Marshal(compactInputs(record.Inputs))
	if nil != err {
		return fmt.Errorf("unable to marshal inputs: %w", err)
	}
	_, err = s.db.Exec(
		"insert into scores(sum, rate, score, inputs) values(?, ?, ?, ?)",
		hashChart(c), record.Rate, record.Score, data,
	)
	if nil != err {
		return fmt.Errorf("unable to save session: %w", err)
	}
	return nil
}

func (s *DefaultStore) scan(rows *sql.Rows) ([]Record, error) {
	records := []Record{}
	for rows.Next() {
		var rec Record
		var blob []byte
		if err := rows.Scan(&rec.Sum, &rec.Rate, &rec.Score, &blob); nil != err {
			return nil, err
		}
		var c recordCompact
		if err := json.Unmarshal(blob, &c); nil != err {
			return nil, fmt.Errorf("unable to unmarshal input history: %w", err)
		}
		inputs, err := uncompactInputs(c)
		if nil != err {
			return nil, err
		}
		rec.Inputs = inputs
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *DefaultStore) Load(c *game.Chart) ([]Record, error) {
	rows, err := s.db.Query(
		"select sum, rate, score, inputs from scores where sum = ?", hashChart(c))
	if nil != err {
		return nil, err
	}
	defer rows.Close()
	return s.scan(rows)
}

func (s *DefaultStore) Best(c *game.Chart) (*Record, error) {
	rows, err := s.db.Query(
		"select sum, rate, score, inputs from scores where sum = ? order by score desc limit 1",
		hashChart(c))
	if nil != err {
		return nil, err
	}
	defer rows.Close()
	records, err := s.scan(rows)
	if nil != err {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}
