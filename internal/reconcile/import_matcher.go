package reconcile

import (
	"time"

	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/constants"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/models"
	"github.com/toppo2000-ai/Taxi-Navigator-sub002/internal/utils"
)

// DecisionKind - исход сопоставления кандидата с существующими записями.
type DecisionKind int

const (
	DecisionInsert DecisionKind = iota
	DecisionUpdate
)

// MatchDecision - решение по одному кандидату импорта.
// При DecisionUpdate поля кандидата целиком заменяют существующую запись,
// но ее ID сохраняется.
type MatchDecision struct {
	Kind   DecisionKind
	Record models.SalesRecord // Итоговая запись с уже проставленным ID
}

// MatchBatch дедуплицирует пачку разобранных кандидатов против существующего
// набора записей. Кандидат совпадает с существующей записью, если их времена
// различаются меньше чем на минуту И при этом совпала либо сумма, либо
// непустое место посадки. Сканирование идет в порядке списка существующих
// записей, первое совпадение выигрывает.
//
// Кандидаты в пределах одной пачки друг с другом НЕ дедуплицируются -
// поведение исходной системы сохранено намеренно.
func MatchBatch(candidates, existing []models.SalesRecord) []MatchDecision {
	decisions := make([]MatchDecision, 0, len(candidates))

	for _, cand := range candidates {
		matched := false
		for _, ex := range existing {
			if !matches(ex, cand) {
				continue
			}
			merged := cand
			merged.ID = ex.ID
			decisions = append(decisions, MatchDecision{Kind: DecisionUpdate, Record: merged})
			matched = true
			break
		}
		if !matched {
			inserted := cand
			if inserted.ID == "" {
				inserted.ID = utils.GenerateID()
			}
			decisions = append(decisions, MatchDecision{Kind: DecisionInsert, Record: inserted})
		}
	}
	return decisions
}

func matches(existing, candidate models.SalesRecord) bool {
	diff := existing.Timestamp.Sub(candidate.Timestamp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= constants.IMPORT_TIME_MATCH_WINDOW_MS*time.Millisecond {
		return false
	}
	if existing.Amount == candidate.Amount {
		return true
	}
	return candidate.PickupLocation != "" && existing.PickupLocation == candidate.PickupLocation
}
