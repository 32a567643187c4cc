package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	. "github.com/smartystreets/goconvey/convey"

	"medkit/internal/ai"
	"medkit/internal/model"
	"medkit/internal/model/chat"
	chatrepo "medkit/internal/repository/chat"
)

// newTestChatService 组装测试用对话服务：内存存储 + 函数桩后端
func newTestChatService(generator ai.GeneratorFunc) (*ChatService, *chatrepo.MemoryStore) {
	store := chatrepo.NewMemoryStore()
	gateway := ai.NewClientWithGenerator(generator, time.Second)
	builder := ai.NewContextBuilder("你是临床医学助手", 20, 0)
	return NewChatService(store, gateway, builder, nil), store
}

func echoGenerator(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
	return schema.AssistantMessage("已收到，正在分析", nil), nil
}

func TestChatService_Chat(t *testing.T) {
	Convey("ChatService.Chat 处理一轮对话", t, func() {
		ctx := context.Background()

		Convey("新对话：医生消息与模型回复先后落库", func() {
			svc, store := newTestChatService(echoGenerator)

			resp, err := svc.Chat(ctx, "doctor-1", &model.ChatRequest{Message: "患者持续低烧一周"})
			So(err, ShouldBeNil)
			So(resp.ConversationID, ShouldNotBeEmpty)
			So(resp.Reply, ShouldEqual, "已收到，正在分析")

			turns, err := store.List(ctx, resp.ConversationID, "doctor-1")
			So(err, ShouldBeNil)
			So(len(turns), ShouldEqual, 2)
			So(turns[0].Role, ShouldEqual, chat.RoleUser)
			So(turns[0].Content, ShouldEqual, "患者持续低烧一周")
			So(turns[1].Role, ShouldEqual, chat.RoleAssistant)
		})

		Convey("续聊：指定conversation_id时在原对话上追加", func() {
			svc, store := newTestChatService(echoGenerator)

			first, err := svc.Chat(ctx, "doctor-1", &model.ChatRequest{Message: "第一个问题"})
			So(err, ShouldBeNil)

			second, err := svc.Chat(ctx, "doctor-1", &model.ChatRequest{
				Message:        "第二个问题",
				ConversationID: first.ConversationID,
			})
			So(err, ShouldBeNil)
			So(second.ConversationID, ShouldEqual, first.ConversationID)

			turns, err := store.List(ctx, first.ConversationID, "doctor-1")
			So(err, ShouldBeNil)
			So(len(turns), ShouldEqual, 4)
		})

		Convey("空消息直接拒绝，不创建对话也不调用后端", func() {
			called := false
			svc, store := newTestChatService(func(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
				called = true
				return schema.AssistantMessage("不应该到这里", nil), nil
			})

			_, err := svc.Chat(ctx, "doctor-1", &model.ChatRequest{Message: "   "})
			So(err, ShouldEqual, ErrEmptyMessage)
			So(called, ShouldBeFalse)

			convs, err := store.ListByOwner(ctx, "doctor-1", 10, 0)
			So(err, ShouldBeNil)
			So(convs, ShouldBeEmpty)
		})

		Convey("推理失败：医生消息已落库，不补写回复", func() {
			svc, store := newTestChatService(func(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
				return nil, errors.New("model unavailable")
			})

			_, err := svc.Chat(ctx, "doctor-1", &model.ChatRequest{
				Message:        "这条消息必须保住",
				ConversationID: "conv-keep",
			})
			var infErr *ai.InferenceError
			So(errors.As(err, &infErr), ShouldBeTrue)

			turns, listErr := store.List(ctx, "conv-keep", "doctor-1")
			So(listErr, ShouldBeNil)
			So(len(turns), ShouldEqual, 1)
			So(turns[0].Role, ShouldEqual, chat.RoleUser)
			So(turns[0].Content, ShouldEqual, "这条消息必须保住")
		})

		Convey("续聊他人对话返回ErrNotFound", func() {
			svc, _ := newTestChatService(echoGenerator)

			first, err := svc.Chat(ctx, "doctor-1", &model.ChatRequest{Message: "私密问题"})
			So(err, ShouldBeNil)

			_, err = svc.Chat(ctx, "doctor-2", &model.ChatRequest{
				Message:        "蹭对话",
				ConversationID: first.ConversationID,
			})
			So(errors.Is(err, chatrepo.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestChatService_History(t *testing.T) {
	Convey("ChatService.History 返回对话历史", t, func() {
		ctx := context.Background()
		svc, _ := newTestChatService(echoGenerator)

		Convey("按插入顺序返回全部消息", func() {
			resp, err := svc.Chat(ctx, "doctor-1", &model.ChatRequest{Message: "问题"})
			So(err, ShouldBeNil)

			turns, err := svc.History(ctx, "doctor-1", resp.ConversationID)
			So(err, ShouldBeNil)
			So(len(turns), ShouldEqual, 2)
			So(turns[0].Role, ShouldEqual, chat.RoleUser)
			So(turns[1].Role, ShouldEqual, chat.RoleAssistant)
		})

		Convey("他人对话返回ErrNotFound", func() {
			resp, err := svc.Chat(ctx, "doctor-1", &model.ChatRequest{Message: "问题"})
			So(err, ShouldBeNil)

			_, err = svc.History(ctx, "doctor-2", resp.ConversationID)
			So(errors.Is(err, chatrepo.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestChatService_Clear(t *testing.T) {
	Convey("ChatService.Clear 清空对话", t, func() {
		ctx := context.Background()
		svc, _ := newTestChatService(echoGenerator)

		Convey("清空后历史为空，对话仍可续聊", func() {
			resp, err := svc.Chat(ctx, "doctor-1", &model.ChatRequest{Message: "问题"})
			So(err, ShouldBeNil)

			So(svc.Clear(ctx, "doctor-1", resp.ConversationID), ShouldBeNil)

			turns, err := svc.History(ctx, "doctor-1", resp.ConversationID)
			So(err, ShouldBeNil)
			So(turns, ShouldBeEmpty)

			again, err := svc.Chat(ctx, "doctor-1", &model.ChatRequest{
				Message:        "清空后的新问题",
				ConversationID: resp.ConversationID,
			})
			So(err, ShouldBeNil)
			So(again.ConversationID, ShouldEqual, resp.ConversationID)
		})

		Convey("不存在的对话返回ErrNotFound", func() {
			err := svc.Clear(ctx, "doctor-1", "missing")
			So(errors.Is(err, chatrepo.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestChatService_ListConversations(t *testing.T) {
	Convey("ChatService.ListConversations 返回对话列表", t, func() {
		ctx := context.Background()
		svc, _ := newTestChatService(echoGenerator)

		first, err := svc.Chat(ctx, "doctor-1", &model.ChatRequest{Message: "问题一"})
		So(err, ShouldBeNil)
		second, err := svc.Chat(ctx, "doctor-1", &model.ChatRequest{Message: "问题二"})
		So(err, ShouldBeNil)
		_, err = svc.Chat(ctx, "doctor-2", &model.ChatRequest{Message: "别人的问题"})
		So(err, ShouldBeNil)

		convs, err := svc.ListConversations(ctx, "doctor-1", 10, 0)
		So(err, ShouldBeNil)
		So(len(convs), ShouldEqual, 2)

		ids := []string{convs[0].ID, convs[1].ID}
		So(ids, ShouldContain, first.ConversationID)
		So(ids, ShouldContain, second.ConversationID)

		// 每个对话一问一答，列表里的消息数必须反映这一点
		for _, conv := range convs {
			So(conv.TurnCount, ShouldEqual, 2)
		}
	})
}

func TestChatService_ConcurrentChat(t *testing.T) {
	Convey("ChatService.Chat 并发调用同一对话不丢消息", t, func() {
		ctx := context.Background()
		svc, _ := newTestChatService(echoGenerator)

		const doctors = 8

		var wg sync.WaitGroup
		for i := 0; i < doctors; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := svc.Chat(ctx, "doctor-1", &model.ChatRequest{
					Message:        fmt.Sprintf("并发问题%d", i),
					ConversationID: "conv-shared",
				})
				if err != nil {
					t.Errorf("Chat() error = %v", err)
				}
			}(i)
		}
		wg.Wait()

		turns, err := svc.History(ctx, "doctor-1", "conv-shared")
		So(err, ShouldBeNil)

		var userTurns, assistantTurns int
		for _, turn := range turns {
			switch turn.Role {
			case chat.RoleUser:
				userTurns++
			case chat.RoleAssistant:
				assistantTurns++
			}
		}
		So(userTurns, ShouldEqual, doctors)
		So(assistantTurns, ShouldEqual, doctors)
	})
}
