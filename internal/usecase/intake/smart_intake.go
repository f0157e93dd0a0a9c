package intake

import (
	"context"

	domain "smart-task-tracker/internal/domain/intake"
)

// Classifier は自由記述からタイトルと優先度を推定する関数。
// 推定ルールは差し替え可能で、呼び出し側は {title, priority} の形だけに依存する。
type Classifier func(input string) (domain.Suggestion, error)

// SmartIntakeUsecase は Smart Intake（フォーム入力前の提案）ユースケース。
// 状態を持たないので並行に呼び出してよい。
type SmartIntakeUsecase struct {
	Classify Classifier
}

// Execute は input を分類して提案を返す。タスクは作成しない。
func (uc *SmartIntakeUsecase) Execute(ctx context.Context, input string) (domain.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return domain.Suggestion{}, err
	}

	classify := uc.Classify
	if classify == nil {
		classify = domain.Classify
	}
	return classify(input)
}
