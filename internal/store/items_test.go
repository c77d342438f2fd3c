package store

import "bwtui/internal/model"

func testItems(ids ...string) []model.Item {
	out := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Item{ID: id, Type: model.ItemTypeLogin, Name: id, Login: &model.Login{}})
	}
	return out
}
