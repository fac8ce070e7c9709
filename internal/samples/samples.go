// Package samples ships small Python programs used by the samples
// subcommand and the test suite as known-answer inputs.
package samples

import "sort"

// Sample is one embedded demo program
type Sample struct {
	Name        string
	Description string
	Source      string
}

// InefficientBatchJob is the canonical inefficient demo: unused imports,
// manual counter loops, range(len()) indexing and an eagerly materialized
// range, with no security findings.
const InefficientBatchJob = `# Inefficient data processing example
# adapted from a real batch job
import os
import sys
import math
import random
import collections

def count_items(items):
    # Manual counter loop
    count = 0
    i = 0
    while i < len(items):
        count += 1
        i += 1
    return count

def find_first_negative(values):
    # Scans with a manual index
    idx = 0
    while idx < len(values):
        if values[idx] < 0:
            return idx
        idx += 1
    return -1

def process_list(data):
    results = []
    for i in range(len(data)):
        results.append(data[i] * 2)
    return results

def build_squares():
    squares = list(range(10))
    return [x * x for x in squares]
`

// EfficientPipeline is a clean counterpart: direct iteration,
// comprehensions, healthy comment density, nothing to flag.
const EfficientPipeline = `# Collect the squares of the even numbers
# and report a short summary.

def even_squares(numbers):
    # Comprehensions iterate without manual indexing
    return [n * n for n in numbers if n % 2 == 0]

def summarize(numbers):
    squares = even_squares(numbers)
    total = sum(squares)
    return {"count": len(squares), "total": total}
`

// InsecureScript concentrates the security catalog: a hardcoded
// credential, shell injection from user input, and eval on user input.
const InsecureScript = `import subprocess

password = "hunter2"

user_cmd = input("command: ")
subprocess.run(user_cmd, shell=True)

result = eval(input("expression: "))
print(result)
`

// NestedReport shows the structural penalties: deep nesting and a flat
// script body with no functions.
const NestedReport = `data = [[1, 2], [3, 4], [5, 6], [7, 8]]
report = ""
for row in data:
    for value in row:
        if value > 2:
            if value % 2 == 0:
                if value < 8:
                    report += "mid "
entries = list(range(20))
for e in entries:
    if e > 10:
        report += "tail "
print(report)
print(len(entries))
print(min(entries))
print(max(entries))
print(sum(entries))
print(sorted(entries))
print(list(reversed(entries)))
print(entries.count(3))
print(entries.index(5))
`

var catalog = map[string]Sample{
	"inefficient": {
		Name:        "inefficient",
		Description: "Batch job with manual loops, range(len()) and unused imports",
		Source:      InefficientBatchJob,
	},
	"efficient": {
		Name:        "efficient",
		Description: "Clean pipeline using comprehensions and direct iteration",
		Source:      EfficientPipeline,
	},
	"insecure": {
		Name:        "insecure",
		Description: "Script with eval, shell injection and a hardcoded credential",
		Source:      InsecureScript,
	},
	"nested": {
		Name:        "nested",
		Description: "Flat script with deep nesting and string concatenation in loops",
		Source:      NestedReport,
	},
}

// Get returns the named sample
func Get(name string) (Sample, bool) {
	s, ok := catalog[name]
	return s, ok
}

// Names returns all sample names in alphabetical order
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every sample ordered by name
func All() []Sample {
	var all []Sample
	for _, name := range Names() {
		all = append(all, catalog[name])
	}
	return all
}
