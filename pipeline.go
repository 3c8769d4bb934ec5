// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package govcrawler

import "log"

// TextRecord is emitted for every page whose extracted text clears the
// word-count floor (invariant I5).
type TextRecord struct {
	URL   string
	Text  string
	Depth int
}

// ImageRecord is emitted for every image reference found on a fetched
// page.
type ImageRecord struct {
	URL   string
	Bytes []byte
	Depth int
}

// Pipeline owns the two bounded output channels. Producers use
// non-blocking try-enqueue: a full queue drops the record and logs a
// warning rather than blocking the Frontier (invariant I6). No dependency
// in this stack offers bounded-drop semantics more directly than a
// native channel, so this one piece stays on the standard library by
// design, not by omission.
type Pipeline struct {
	TextRecords  chan TextRecord
	ImageRecords chan ImageRecord
	logger       *log.Logger
}

// NewPipeline sizes the two channels from memoryGB: floor(1000*memoryGB)
// text capacity, floor(500*memoryGB) image capacity.
func NewPipeline(memoryGB float64, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	textCap := int(1000 * memoryGB)
	imageCap := int(500 * memoryGB)
	if textCap < 1 {
		textCap = 1
	}
	if imageCap < 1 {
		imageCap = 1
	}
	return &Pipeline{
		TextRecords:  make(chan TextRecord, textCap),
		ImageRecords: make(chan ImageRecord, imageCap),
		logger:       logger,
	}
}

// TrySendText attempts a non-blocking enqueue, logging and dropping on a
// full queue.
func (p *Pipeline) TrySendText(rec TextRecord) {
	select {
	case p.TextRecords <- rec:
	default:
		p.logger.Printf("govcrawler: text queue full, dropping record for %s", rec.URL)
	}
}

// TrySendImage attempts a non-blocking enqueue, logging and dropping on
// a full queue.
func (p *Pipeline) TrySendImage(rec ImageRecord) {
	select {
	case p.ImageRecords <- rec:
	default:
		p.logger.Printf("govcrawler: image queue full, dropping record for %s", rec.URL)
	}
}
