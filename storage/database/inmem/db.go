package inmemdb

import (
	"sync"

	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/audit"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/group"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/score"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/survey"
	"github.com/T3Sistema/SCORE-INTELIGENTE-2.0/core/user"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	groupTable struct {
		mutex sync.RWMutex
		table map[string]*group.Group
	}

	categoryTable struct {
		mutex sync.RWMutex
		table map[string]*survey.Category
	}

	segmentTable struct {
		mutex sync.RWMutex
		table map[string]*survey.Segment
	}

	questionTable struct {
		mutex sync.RWMutex
		table map[string]*survey.Question
	}

	submissionTable struct {
		mutex sync.RWMutex
		table map[string]*score.Submission
	}

	logEntryTable struct {
		mutex sync.RWMutex
		table map[string]*audit.LogEntry
	}

	DB struct {
		user       *userTable
		group      *groupTable
		category   *categoryTable
		segment    *segmentTable
		question   *questionTable
		submission *submissionTable
		logEntry   *logEntryTable
	}
)

func NewDB() *DB {
	return &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		group:      &groupTable{table: make(map[string]*group.Group)},
		category:   &categoryTable{table: make(map[string]*survey.Category)},
		segment:    &segmentTable{table: make(map[string]*survey.Segment)},
		question:   &questionTable{table: make(map[string]*survey.Question)},
		submission: &submissionTable{table: make(map[string]*score.Submission)},
		logEntry:   &logEntryTable{table: make(map[string]*audit.LogEntry)},
	}
}
