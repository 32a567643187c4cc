package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"medkit/internal/model/chat"
)

func TestMemoryStore_Append(t *testing.T) {
	Convey("MemoryStore.Append 追加消息", t, func() {
		store := NewMemoryStore()
		ctx := context.Background()

		Convey("对话不存在时自动创建", func() {
			conv, err := store.Append(ctx, "conv-1", "doctor-1", chat.NewUserTurn("你好"))
			So(err, ShouldBeNil)
			So(conv.ID, ShouldEqual, "conv-1")
			So(conv.OwnerID, ShouldEqual, "doctor-1")
			So(len(conv.Turns), ShouldEqual, 1)
		})

		Convey("消息保持插入顺序", func() {
			_, err := store.Append(ctx, "conv-1", "doctor-1", chat.NewUserTurn("第一条"))
			So(err, ShouldBeNil)
			_, err = store.Append(ctx, "conv-1", "doctor-1", chat.NewAssistantTurn("第二条"))
			So(err, ShouldBeNil)
			conv, err := store.Append(ctx, "conv-1", "doctor-1", chat.NewUserTurn("第三条"))
			So(err, ShouldBeNil)

			So(len(conv.Turns), ShouldEqual, 3)
			So(conv.Turns[0].Content, ShouldEqual, "第一条")
			So(conv.Turns[1].Content, ShouldEqual, "第二条")
			So(conv.Turns[2].Content, ShouldEqual, "第三条")
		})

		Convey("向他人对话追加返回ErrNotFound", func() {
			_, err := store.Append(ctx, "conv-1", "doctor-1", chat.NewUserTurn("你好"))
			So(err, ShouldBeNil)

			_, err = store.Append(ctx, "conv-1", "doctor-2", chat.NewUserTurn("蹭对话"))
			So(err, ShouldEqual, ErrNotFound)

			// 原对话不受影响
			turns, err := store.List(ctx, "conv-1", "doctor-1")
			So(err, ShouldBeNil)
			So(len(turns), ShouldEqual, 1)
		})

		Convey("并发追加不丢消息", func() {
			const goroutines = 8
			const perGoroutine = 25

			var wg sync.WaitGroup
			for g := 0; g < goroutines; g++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for i := 0; i < perGoroutine; i++ {
						_, err := store.Append(ctx, "conv-busy", "doctor-1",
							chat.NewUserTurn(fmt.Sprintf("g%d-%d", g, i)))
						if err != nil {
							t.Errorf("Append() error = %v", err)
						}
					}
				}(g)
			}
			wg.Wait()

			turns, err := store.List(ctx, "conv-busy", "doctor-1")
			So(err, ShouldBeNil)
			So(len(turns), ShouldEqual, goroutines*perGoroutine)
		})
	})
}

func TestMemoryStore_Get(t *testing.T) {
	Convey("MemoryStore.Get 查询对话", t, func() {
		store := NewMemoryStore()
		ctx := context.Background()

		Convey("不存在的对话返回ErrNotFound", func() {
			_, err := store.Get(ctx, "missing", "doctor-1")
			So(err, ShouldEqual, ErrNotFound)
		})

		Convey("他人的对话同样返回ErrNotFound，不泄露存在性", func() {
			_, err := store.Append(ctx, "conv-1", "doctor-1", chat.NewUserTurn("私密内容"))
			So(err, ShouldBeNil)

			_, err = store.Get(ctx, "conv-1", "doctor-2")
			So(err, ShouldEqual, ErrNotFound)
		})

		Convey("返回的是拷贝，外部修改不影响存储", func() {
			_, err := store.Append(ctx, "conv-1", "doctor-1", chat.NewUserTurn("原始内容"))
			So(err, ShouldBeNil)

			conv, err := store.Get(ctx, "conv-1", "doctor-1")
			So(err, ShouldBeNil)
			conv.Turns[0].Content = "篡改"

			again, err := store.Get(ctx, "conv-1", "doctor-1")
			So(err, ShouldBeNil)
			So(again.Turns[0].Content, ShouldEqual, "原始内容")
		})
	})
}

func TestMemoryStore_Clear(t *testing.T) {
	Convey("MemoryStore.Clear 清空对话", t, func() {
		store := NewMemoryStore()
		ctx := context.Background()

		Convey("清空后对话壳保留，消息归零", func() {
			_, err := store.Append(ctx, "conv-1", "doctor-1", chat.NewUserTurn("你好"))
			So(err, ShouldBeNil)
			_, err = store.Append(ctx, "conv-1", "doctor-1", chat.NewAssistantTurn("你好，有什么可以帮你"))
			So(err, ShouldBeNil)

			err = store.Clear(ctx, "conv-1", "doctor-1")
			So(err, ShouldBeNil)

			conv, err := store.Get(ctx, "conv-1", "doctor-1")
			So(err, ShouldBeNil)
			So(conv.Turns, ShouldBeEmpty)
		})

		Convey("清空后可以继续追加", func() {
			_, err := store.Append(ctx, "conv-1", "doctor-1", chat.NewUserTurn("旧消息"))
			So(err, ShouldBeNil)
			So(store.Clear(ctx, "conv-1", "doctor-1"), ShouldBeNil)

			conv, err := store.Append(ctx, "conv-1", "doctor-1", chat.NewUserTurn("新消息"))
			So(err, ShouldBeNil)
			So(len(conv.Turns), ShouldEqual, 1)
			So(conv.Turns[0].Content, ShouldEqual, "新消息")
		})

		Convey("不存在的对话返回ErrNotFound", func() {
			So(store.Clear(ctx, "missing", "doctor-1"), ShouldEqual, ErrNotFound)
		})

		Convey("他人的对话返回ErrNotFound", func() {
			_, err := store.Append(ctx, "conv-1", "doctor-1", chat.NewUserTurn("你好"))
			So(err, ShouldBeNil)
			So(store.Clear(ctx, "conv-1", "doctor-2"), ShouldEqual, ErrNotFound)
		})
	})
}

func TestMemoryStore_ListByOwner(t *testing.T) {
	Convey("MemoryStore.ListByOwner 返回医生名下的对话", t, func() {
		store := NewMemoryStore()
		ctx := context.Background()

		_, err := store.Append(ctx, "conv-a", "doctor-1", chat.NewUserTurn("a"))
		So(err, ShouldBeNil)
		_, err = store.Append(ctx, "conv-b", "doctor-1", chat.NewUserTurn("b"))
		So(err, ShouldBeNil)
		_, err = store.Append(ctx, "conv-c", "doctor-2", chat.NewUserTurn("c"))
		So(err, ShouldBeNil)

		Convey("只返回自己的对话", func() {
			convs, err := store.ListByOwner(ctx, "doctor-1", 10, 0)
			So(err, ShouldBeNil)
			So(len(convs), ShouldEqual, 2)
			for _, conv := range convs {
				So(conv.OwnerID, ShouldEqual, "doctor-1")
			}
		})

		Convey("列表不带消息体，但消息数真实", func() {
			_, err := store.Append(ctx, "conv-a", "doctor-1", chat.NewAssistantTurn("回复a"))
			So(err, ShouldBeNil)

			convs, err := store.ListByOwner(ctx, "doctor-1", 10, 0)
			So(err, ShouldBeNil)
			for _, conv := range convs {
				So(conv.Turns, ShouldBeEmpty)
				switch conv.ID {
				case "conv-a":
					So(conv.TurnCount, ShouldEqual, 2)
				case "conv-b":
					So(conv.TurnCount, ShouldEqual, 1)
				}
			}
		})

		Convey("limit和offset生效", func() {
			convs, err := store.ListByOwner(ctx, "doctor-1", 1, 0)
			So(err, ShouldBeNil)
			So(len(convs), ShouldEqual, 1)

			convs, err = store.ListByOwner(ctx, "doctor-1", 10, 5)
			So(err, ShouldBeNil)
			So(convs, ShouldBeEmpty)
		})
	})
}
