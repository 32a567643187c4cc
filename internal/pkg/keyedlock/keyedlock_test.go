package keyedlock

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestArena(t *testing.T) {
	Convey("Arena 按key互斥", t, func() {
		arena := New()

		Convey("同一个key的临界区串行执行", func() {
			const goroutines = 16
			counter := 0

			var wg sync.WaitGroup
			for i := 0; i < goroutines; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 100; j++ {
						arena.Lock("same-key")
						counter++
						arena.Unlock("same-key")
					}
				}()
			}
			wg.Wait()

			So(counter, ShouldEqual, goroutines*100)
		})

		Convey("不同key互不阻塞", func() {
			arena.Lock("key-a")

			done := make(chan struct{})
			go func() {
				arena.Lock("key-b")
				arena.Unlock("key-b")
				close(done)
			}()

			// key-a 被持有时 key-b 仍可获取
			<-done
			arena.Unlock("key-a")
		})

		Convey("无等待者时锁对象被回收", func() {
			arena.Lock("ephemeral")
			arena.Unlock("ephemeral")

			arena.mu.Lock()
			_, exists := arena.locks["ephemeral"]
			arena.mu.Unlock()
			So(exists, ShouldBeFalse)
		})

		Convey("释放未持有的key会panic", func() {
			So(func() { arena.Unlock("never-held") }, ShouldPanic)
		})
	})
}
