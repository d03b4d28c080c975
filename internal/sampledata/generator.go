package sampledata

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Dataset is one generated input file: a header and pre-formatted rows
type Dataset struct {
	Name    string
	File    string // file name the bundled profiles expect
	Headers []string
	Rows    [][]string
}

// Config controls size, randomness and the amount of dirt injected
type Config struct {
	Rows      int
	Seed      int64
	StartDate time.Time

	// Dirty adds exact duplicate rows, blank cells and unparseable numbers
	Dirty bool
}

func DefaultConfig() Config {
	return Config{
		Rows:      200,
		Seed:      42,
		StartDate: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		Dirty:     true,
	}
}

func (c Config) validate() error {
	if c.Rows <= 0 {
		return fmt.Errorf("rows must be > 0")
	}
	return nil
}

var (
	regions    = []string{"Asia", "Europe", "Sub-Saharan Africa", "North America", "Australia and Oceania"}
	countries  = map[string][]string{"Asia": {"India", "Japan", "Mongolia"}, "Europe": {"Norway", "Portugal", "Iceland"}, "Sub-Saharan Africa": {"Kenya", "Ghana", "Rwanda"}, "North America": {"Canada", "Mexico"}, "Australia and Oceania": {"Australia", "Fiji", "Tuvalu"}}
	itemPrices = map[string]float64{"Cosmetics": 437.20, "Clothes": 109.28, "Snacks": 152.58, "Beverages": 47.45, "Office Supplies": 651.21, "Baby Food": 255.28}
	items      = []string{"Cosmetics", "Clothes", "Snacks", "Beverages", "Office Supplies", "Baby Food"}
	channels   = []string{"Online", "Offline"}
	priorities = []string{"H", "M", "L", "C"}
)

// Sales mirrors the Amazon sales export: one order per row with revenue, cost and profit
func Sales(cfg Config) (*Dataset, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	headers := []string{
		"Region", "Country", "Item Type", "Sales Channel", "Order Priority", "Order Date",
		"Order ID", "Ship Date", "Units Sold", "Unit Price", "Unit Cost",
		"Total Revenue", "Total Cost", "Total Profit",
	}

	rows := make([][]string, cfg.Rows)
	span := 7 * 365
	for i := range rows {
		region := regions[rng.Intn(len(regions))]
		country := countries[region][rng.Intn(len(countries[region]))]
		item := items[rng.Intn(len(items))]
		price := itemPrices[item]
		cost := price * (0.55 + rng.Float64()*0.2)
		units := 1 + rng.Intn(9999)
		ordered := cfg.StartDate.AddDate(0, 0, rng.Intn(span))
		shipped := ordered.AddDate(0, 0, 1+rng.Intn(45))

		revenue := price * float64(units)
		totalCost := cost * float64(units)
		rows[i] = []string{
			region,
			country,
			item,
			channels[rng.Intn(len(channels))],
			priorities[rng.Intn(len(priorities))],
			ordered.Format("1/2/2006"),
			strconv.Itoa(100000000 + rng.Intn(900000000)),
			shipped.Format("1/2/2006"),
			strconv.Itoa(units),
			fToStr(price, 2),
			fToStr(cost, 2),
			fToStr(revenue, 2),
			fToStr(totalCost, 2),
			fToStr(revenue-totalCost, 2),
		}
	}

	if cfg.Dirty {
		rows = dirty(rng, rows,
			cellEdit{col: indexOf(headers, "Total Revenue"), value: "unknown"},
			cellEdit{col: indexOf(headers, "Country")},
		)
	}

	return &Dataset{Name: "amazon_sales", File: "Amazon-Sales-data.csv", Headers: headers, Rows: rows}, nil
}

// Heart mirrors the UCI heart disease table. Risk factors raise the chance of target = 1.
func Heart(cfg Config) (*Dataset, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	headers := []string{
		"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg",
		"thalach", "exang", "oldpeak", "slope", "ca", "thal", "target",
	}

	rows := make([][]string, cfg.Rows)
	for i := range rows {
		age := clamp(math.Round(54+rng.NormFloat64()*9), 29, 77)
		sex := float64(boolInt(rng.Float64() < 0.68))
		cp := float64(rng.Intn(4))
		trestbps := clamp(math.Round(131+rng.NormFloat64()*17), 94, 200)
		chol := clamp(math.Round(246+rng.NormFloat64()*51), 126, 564)
		fbs := float64(boolInt(rng.Float64() < 0.15))
		restecg := float64(rng.Intn(3))
		thalach := clamp(math.Round(204-0.95*age+rng.NormFloat64()*18), 71, 202)
		exang := float64(boolInt(rng.Float64() < 0.33))
		oldpeak := clamp(math.Abs(rng.NormFloat64()*1.1), 0, 6.2)
		slope := float64(rng.Intn(3))
		ca := float64(rng.Intn(5))
		thal := float64(rng.Intn(4))

		score := 0.8*cp - 1.2*exang - 0.6*oldpeak - 0.5*ca + (thalach-150)/25 - 0.7*sex + rng.NormFloat64()*0.8
		target := float64(boolInt(score > -0.6))

		rows[i] = []string{
			fToStr(age, 0), fToStr(sex, 0), fToStr(cp, 0), fToStr(trestbps, 0), fToStr(chol, 0),
			fToStr(fbs, 0), fToStr(restecg, 0), fToStr(thalach, 0), fToStr(exang, 0),
			fToStr(oldpeak, 1), fToStr(slope, 0), fToStr(ca, 0), fToStr(thal, 0), fToStr(target, 0),
		}
	}

	if cfg.Dirty {
		rows = dirty(rng, rows, cellEdit{col: indexOf(headers, "chol")})
	}

	return &Dataset{Name: "heart_disease", File: "Heart_Disease_data.csv", Headers: headers, Rows: rows}, nil
}

var (
	firstNames = []string{"Ava", "Miles", "Nina", "Otis", "Ruth", "Cole", "Ella", "Bing", "Lena", "Dean", "Joni", "Ray"}
	lastNames  = []string{"Holiday", "Davis", "Simone", "Redding", "Brown", "Porter", "Fitzgerald", "Crosby", "Horne", "Martin", "Mitchell", "Charles"}
	works      = []string{"Live at the Hall", "Blue Hour", "Last Call", "The Long Road", "Evening Standard", "Northern Lights"}
)

// Entertainers returns the basic, breakthrough and last-work tables. They share
// the Entertainer column and carry no country, age or revenue columns.
func Entertainers(cfg Config) ([]*Dataset, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	names := make([]string, cfg.Rows)
	seen := make(map[string]int)
	for i := range names {
		name := firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
		seen[name]++
		if seen[name] > 1 {
			name = fmt.Sprintf("%s %s", name, roman(seen[name]))
		}
		names[i] = name
	}

	basic := &Dataset{
		Name:    "entertainer_basic_info",
		File:    "Entertainer_Basic_Info.xlsx",
		Headers: []string{"Entertainer", "Gender (traditional)", "Birth Date"},
	}
	breakthrough := &Dataset{
		Name:    "entertainer_breakthrough_info",
		File:    "Entertainer_Breakthrough_Info.xlsx",
		Headers: []string{"Entertainer", "Year of Breakthrough/#1 Hit/Award Nomination", "Breakthrough Name"},
	}
	lastWork := &Dataset{
		Name:    "entertainer_last_work_info",
		File:    "entertainer_Last_Work.xlsx",
		Headers: []string{"Entertainer", "Year of Last Major Work (arguably)", "Year of Death"},
	}

	for _, name := range names {
		born := time.Date(1900+rng.Intn(80), time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)
		gender := "F"
		if rng.Intn(2) == 0 {
			gender = "M"
		}
		breakYear := born.Year() + 18 + rng.Intn(15)
		lastYear := breakYear + rng.Intn(40)
		death := ""
		if rng.Float64() < 0.4 {
			death = strconv.Itoa(lastYear + rng.Intn(10))
		}

		basic.Rows = append(basic.Rows, []string{name, gender, born.Format("2006-01-02")})
		breakthrough.Rows = append(breakthrough.Rows, []string{name, strconv.Itoa(breakYear), works[rng.Intn(len(works))]})
		// Not every entertainer has a recorded last work, so the merge drops some
		if rng.Float64() < 0.9 {
			lastWork.Rows = append(lastWork.Rows, []string{name, strconv.Itoa(lastYear), death})
		}
	}

	if cfg.Dirty {
		basic.Rows = dirty(rng, basic.Rows, cellEdit{col: 1})
	}

	return []*Dataset{basic, breakthrough, lastWork}, nil
}

// All generates every dataset the bundled profiles read
func All(cfg Config) ([]*Dataset, error) {
	sales, err := Sales(cfg)
	if err != nil {
		return nil, err
	}
	heart, err := Heart(cfg)
	if err != nil {
		return nil, err
	}
	ent, err := Entertainers(cfg)
	if err != nil {
		return nil, err
	}
	return append([]*Dataset{sales, heart}, ent...), nil
}

// WriteAll writes every dataset into dir under its expected file name
func WriteAll(dir string, cfg Config) ([]string, error) {
	sets, err := All(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	var paths []string
	for _, ds := range sets {
		path := filepath.Join(dir, ds.File)
		if err := Write(path, ds); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Write picks CSV or XLSX from the file extension
func Write(path string, ds *Dataset) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return WriteXLSX(path, ds)
	}
	return WriteCSV(path, ds)
}

func WriteCSV(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ds.Headers); err != nil {
		return err
	}
	for _, row := range ds.Rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// WriteXLSX writes the dataset to Sheet1. Cells that parse as numbers are stored as numbers.
func WriteXLSX(path string, ds *Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}

	header := make([]interface{}, len(ds.Headers))
	for i, h := range ds.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r, row := range ds.Rows {
		values := make([]interface{}, len(row))
		for c, v := range row {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				values[c] = n
			} else {
				values[c] = v
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// cellEdit overwrites one cell of a random row; an empty value blanks it
type cellEdit struct {
	col   int
	value string
}

// dirty applies the edits and appends copies of existing rows as exact duplicates
func dirty(rng *rand.Rand, rows [][]string, edits ...cellEdit) [][]string {
	if len(rows) < 2 {
		return rows
	}
	for _, e := range edits {
		// never the first row, so forward fill has something to copy
		row := 1 + rng.Intn(len(rows)-1)
		rows[row][e.col] = e.value
	}

	dupes := 1 + len(rows)/50
	for i := 0; i < dupes; i++ {
		src := rows[rng.Intn(len(rows))]
		rows = append(rows, append([]string(nil), src...))
	}
	return rows
}

func indexOf(values []string, want string) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return -1
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func roman(n int) string {
	numerals := []string{"", "I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X"}
	if n < len(numerals) {
		return numerals[n]
	}
	return strconv.Itoa(n)
}

func fToStr(x float64, decimals int) string {
	p := math.Pow10(decimals)
	x = math.Round(x*p) / p
	return strconv.FormatFloat(x, 'f', decimals, 64)
}
