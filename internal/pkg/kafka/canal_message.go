package kafka

import (
	"Huddle/internal/pkg/realtime"

	"github.com/pkg/errors"
)

// canal 事件类型
const (
	INSERT = "INSERT"
	UPDATE = "UPDATE"
	DELETE = "DELETE"
)

// CanalMessage 定义了 Canal 推送到 Kafka 的 JSON 数据结构
type CanalMessage struct {
	ID       int64    `json:"id"`
	Database string   `json:"database"`
	Table    string   `json:"table"`
	PKNames  []string `json:"pkNames"`
	IsDDL    bool     `json:"isDdl"`
	Type     string   `json:"type"`
	ES       int64    `json:"es"`
	TS       int64    `json:"ts"`
	SQL      string   `json:"sql"`

	// Data 存储变更后的数据，DELETE 时为被删除的行
	Data []map[string]interface{} `json:"data"`

	// Old 存储 UPDATE 前被修改列的旧值
	Old []map[string]interface{} `json:"old"`
}

// ToChangeEvents 每行一个事件；DELETE 的行放入 Old，UPDATE 的 Old 用新行补全未修改的列
func ToChangeEvents(msg *CanalMessage) ([]realtime.ChangeEvent, error) {
	if msg.IsDDL {
		return nil, nil
	}

	events := make([]realtime.ChangeEvent, 0, len(msg.Data))
	for i, row := range msg.Data {
		ev := realtime.ChangeEvent{Table: msg.Table, CommitTS: msg.ES}
		switch msg.Type {
		case INSERT:
			ev.Type = realtime.EventInsert
			ev.New = realtime.Record(row)
		case UPDATE:
			ev.Type = realtime.EventUpdate
			ev.New = realtime.Record(row)
			old := make(realtime.Record, len(row))
			for k, v := range row {
				old[k] = v
			}
			if i < len(msg.Old) {
				for k, v := range msg.Old[i] {
					old[k] = v
				}
			}
			ev.Old = old
		case DELETE:
			ev.Type = realtime.EventDelete
			ev.Old = realtime.Record(row)
		default:
			return nil, errors.Errorf("unsupported canal type %q", msg.Type)
		}
		events = append(events, ev)
	}
	return events, nil
}
