package project

import (
	"context"
	"fmt"

	"smart-task-tracker/internal/usecase/repository"
)

// DeleteProjectUsecase はプロジェクト削除ユースケース。
// プロジェクトと配下のタスクを 1 つの原子的な単位で削除する。
type DeleteProjectUsecase struct {
	Tx repository.Transactor
}

// Execute はプロジェクトを削除する。未存在の ID には ProjectNotFound を返す。
// 読み手からは「プロジェクトだけ消えてタスクが残る」状態も、その逆も観測されない。
//
// 事前の存在確認はせず、DELETE 自体で行ロックを取る。同じプロジェクトを並行に削除した場合、
// 後続は先行のコミットを待ってから 0 件削除となり ProjectNotFound を返す。
func (uc *DeleteProjectUsecase) Execute(ctx context.Context, id string) error {
	return uc.Tx.Atomic(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Projects.Delete(ctx, id); err != nil {
			return err
		}

		if err := repos.Tasks.DeleteByProject(ctx, id); err != nil {
			return fmt.Errorf("delete tasks of project %s: %w", id, err)
		}
		return nil
	})
}
