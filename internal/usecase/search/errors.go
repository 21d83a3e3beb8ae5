package search

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/kailas-cloud/kickdex/internal/backend"
	"github.com/kailas-cloud/kickdex/internal/domain"
	"github.com/kailas-cloud/kickdex/internal/domain/index"
)

const noSearchContext = "No search context found for id"

// Messages of backends too old for the compiled query.
var (
	unsupportedServerMessages = []string{
		"IllegalArgumentException[minimumSimilarity >= 1]",
		"No query registered for [multi_match]",
		"[match] query does not support [cutoff_frequency]",
		"No query registered for [function_score]",
	}
	unsupportedRequestMessages = []string{
		"bool query does not support [filter]",
		"[bool] filter does not support [filter]",
	}
	staleAnalyzer = regexp.MustCompile(`analyzer \[kickdex_.+\] not found`)
)

// classify maps a backend reply to the domain error taxonomy. Other errors are returned unchanged.
func classify(err error, idx *index.Index) error {
	var be *backend.Error
	if !errors.As(err, &be) {
		return err
	}
	msg := be.Message()

	switch be.Status {
	case http.StatusNotFound:
		if strings.Contains(msg, noSearchContext) {
			return &domain.MissingIndexError{Msg: noSearchContext}
		}
		return &domain.MissingIndexError{Msg: "Index missing - run " + reindexCommand(idx)}
	case http.StatusInternalServerError:
		if containsAny(msg, unsupportedServerMessages) {
			return &domain.UnsupportedVersionError{}
		}
	case http.StatusBadRequest:
		if containsAny(msg, unsupportedRequestMessages) {
			return &domain.UnsupportedVersionError{}
		}
		if staleAnalyzer.MatchString(msg) {
			return &domain.InvalidQueryError{Msg: "Bad mapping - run " + reindexCommand(idx)}
		}
		return &domain.InvalidQueryError{Msg: msg}
	}
	return err
}

func reindexCommand(idx *index.Index) string {
	if idx == nil {
		return "reindex"
	}
	return idx.ReindexCommand()
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
