//
// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

var rowsHeader = []string{"sample_size", "epsilon", "delta", "stat", "value"}

// ReadSampleFromCSV reads a sample from a single-column csv file with a
// header row.
func ReadSampleFromCSV(inputFile string) ([]float64, error) {
	csvFile, err := os.Open(inputFile)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the csv file = %q, err = %v", inputFile, err)
	}
	defer csvFile.Close()

	sample := make([]float64, 0)
	r := csv.NewReader(csvFile)
	skipLine := false
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("couldn't read the csv file = %q, err = %v", inputFile, err)
		}
		if len(record) != 1 {
			return nil, fmt.Errorf("the csv file = %q has incorrect format", inputFile)
		}

		// Skip the first line in the csv file which contains the header.
		if !skipLine {
			skipLine = true
			continue
		}

		value, err := toFloat64(record[0])
		if err != nil {
			return nil, fmt.Errorf("couldn't parse value %q in the csv file = %q, err = %v", record[0], inputFile, err)
		}
		sample = append(sample, value)
	}
	return sample, nil
}

// WriteSampleToCSV writes a sample to a single-column csv file with a header
// row, in the format ReadSampleFromCSV reads.
func WriteSampleToCSV(sample []float64, outputFile string) error {
	csvFile, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("couldn't open the csv file = %q, err = %v", outputFile, err)
	}

	writer := csv.NewWriter(csvFile)

	records := make([][]string, 0, len(sample)+1)
	records = append(records, []string{"value"})
	for _, v := range sample {
		records = append(records, []string{toString(v)})
	}
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf(
			"couldn't write to the csv file = %q, err = %v",
			outputFile, combineErrors(err, csvFile.Close()))
	}

	err = csvFile.Close()
	if err != nil {
		return fmt.Errorf("couldn't close the csv file = %q, err = %v", outputFile, err)
	}

	return nil
}

// WriteRowsToCSV writes the result rows of a sweep to a csv file with a
// header row.
func WriteRowsToCSV(rows []Row, outputFile string) error {
	csvFile, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("couldn't open the csv file = %q, err = %v", outputFile, err)
	}

	writer := csv.NewWriter(csvFile)

	records := make([][]string, 0, len(rows)+1)
	records = append(records, rowsHeader)
	for _, row := range rows {
		records = append(records, []string{
			strconv.Itoa(row.SampleSize),
			toString(row.Epsilon),
			toString(row.Delta),
			row.Stat,
			toString(row.Value),
		})
	}
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf(
			"couldn't write to the csv file = %q, err = %v",
			outputFile, combineErrors(err, csvFile.Close()))
	}

	err = csvFile.Close()
	if err != nil {
		return fmt.Errorf("couldn't close the csv file = %q, err = %v", outputFile, err)
	}

	return nil
}

// ReadRowsFromCSV reads back the result rows of a sweep written by
// WriteRowsToCSV.
func ReadRowsFromCSV(inputFile string) ([]Row, error) {
	csvFile, err := os.Open(inputFile)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the csv file = %q, err = %v", inputFile, err)
	}
	defer csvFile.Close()

	rows := make([]Row, 0)
	r := csv.NewReader(csvFile)
	skipLine := false
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("couldn't read the csv file = %q, err = %v", inputFile, err)
		}
		if len(record) != len(rowsHeader) {
			return nil, fmt.Errorf("the csv file = %q has incorrect format", inputFile)
		}

		if !skipLine {
			skipLine = true
			continue
		}

		sampleSize, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("couldn't parse sample size %q in the csv file = %q, err = %v", record[0], inputFile, err)
		}
		epsilon, err := toFloat64(record[1])
		if err != nil {
			return nil, fmt.Errorf("couldn't parse epsilon %q in the csv file = %q, err = %v", record[1], inputFile, err)
		}
		delta, err := toFloat64(record[2])
		if err != nil {
			return nil, fmt.Errorf("couldn't parse delta %q in the csv file = %q, err = %v", record[2], inputFile, err)
		}
		value, err := toFloat64(record[4])
		if err != nil {
			return nil, fmt.Errorf("couldn't parse value %q in the csv file = %q, err = %v", record[4], inputFile, err)
		}
		rows = append(rows, Row{
			SampleSize: sampleSize,
			Epsilon:    epsilon,
			Delta:      delta,
			Stat:       record[3],
			Value:      value,
		})
	}
	return rows, nil
}

func toString(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func toFloat64(str string) (float64, error) {
	return strconv.ParseFloat(str, 64)
}

func combineErrors(errors ...error) string {
	var nonNilErrors []error
	for _, err := range errors {
		if err != nil {
			nonNilErrors = append(nonNilErrors, err)
		}
	}
	return fmt.Sprintf("%+v", nonNilErrors)
}
