package question

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"atpl-quiz-service/internal/domain"
)

// FileTypes are the extensions considered question files.
var FileTypes = []string{".json", ".txt"}

// FileCount describes one loaded question file for the manifest.
type FileCount struct {
	Subject   string `json:"subject"`
	Topic     string `json:"topic"`
	Path      string `json:"path"`
	Questions int    `json:"questions"`
}

// Manifest summarizes what was loaded, for rendering separately from the
// question data itself.
type Manifest struct {
	Files []FileCount `json:"files"`
	Total int         `json:"total"`
}

// Loader reads question files from subject directories under a base folder.
// Each file is UTF-8 JSON holding either an array of questions or an object
// mapping topic name to an array of questions.
type Loader struct {
	dir string
	log *zap.Logger
}

func NewLoader(dir string, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{dir: dir, log: log}
}

// Load walks the subject directories and returns every valid question plus
// a manifest of per-file counts. Unreadable or malformed files contribute
// nothing and only produce a warning; loading continues.
func (l *Loader) Load(_ context.Context) ([]domain.Question, Manifest, error) {
	var (
		questions []domain.Question
		manifest  Manifest
	)

	subjects, err := os.ReadDir(l.dir)
	if err != nil {
		l.log.Warn("question base folder unreadable", zap.String("dir", l.dir), zap.Error(err))
		return nil, manifest, nil
	}

	for _, subject := range subjects {
		if !subject.IsDir() {
			continue
		}
		subjectDir := filepath.Join(l.dir, subject.Name())
		files, err := os.ReadDir(subjectDir)
		if err != nil {
			l.log.Warn("subject folder unreadable", zap.String("dir", subjectDir), zap.Error(err))
			continue
		}
		for _, file := range files {
			if file.IsDir() || !isQuestionFile(file.Name()) {
				continue
			}
			path := filepath.Join(subjectDir, file.Name())
			loaded := l.loadFile(path)
			questions = append(questions, loaded...)
			manifest.Files = append(manifest.Files, FileCount{
				Subject:   subject.Name(),
				Topic:     topicName(file.Name()),
				Path:      path,
				Questions: len(loaded),
			})
		}
	}

	manifest.Total = len(questions)
	return questions, manifest, nil
}

func (l *Loader) loadFile(path string) []domain.Question {
	data, err := os.ReadFile(path)
	if err != nil {
		l.log.Warn("could not read question file", zap.String("path", path), zap.Error(err))
		return nil
	}

	parsed, err := parse(data)
	if err != nil {
		l.log.Warn("could not parse question file", zap.String("path", path), zap.Error(err))
		return nil
	}

	valid := parsed[:0]
	for _, q := range parsed {
		if !validQuestion(q) {
			l.log.Warn("dropping invalid question",
				zap.String("path", path),
				zap.String("question", q.Text),
			)
			continue
		}
		valid = append(valid, q)
	}
	return valid
}

// parse accepts either a bare array of questions or a topic-keyed object.
// Topics are flattened in sorted topic-name order.
func parse(data []byte) ([]domain.Question, error) {
	var list []domain.Question
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var byTopic map[string][]domain.Question
	if err := json.Unmarshal(data, &byTopic); err != nil {
		return nil, err
	}

	topics := make([]string, 0, len(byTopic))
	for topic := range byTopic {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	var flattened []domain.Question
	for _, topic := range topics {
		flattened = append(flattened, byTopic[topic]...)
	}
	return flattened, nil
}

// validQuestion enforces the load-time invariant: when options are present,
// the answer must be one of them.
func validQuestion(q domain.Question) bool {
	if len(q.Options) == 0 {
		return true
	}
	for _, opt := range q.Options {
		if opt == q.Answer {
			return true
		}
	}
	return false
}

func isQuestionFile(name string) bool {
	for _, ext := range FileTypes {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// topicName turns "weather_radar.json" into "Weather Radar".
func topicName(file string) string {
	base := strings.TrimSuffix(file, filepath.Ext(file))
	words := strings.Split(strings.ReplaceAll(base, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
