/**
 *
 * 利用数组实现的定长双端队列
 * 流量迭代时保存最近若干次的残差，迭代不收敛时随错误一起返回
 *
 */

package deque

type Deque[T any] interface {
	// 队列的长度
	Size() int

	// 获取队列中对应下标的数值，0 为队头
	Get(i int) T

	// 正向遍历
	Traverse(f func(i int, item T))

	// 在队列结尾增加一个元素，队列满时先挤掉队头
	AddLast(item T)

	// 在队列结尾删除一个元素
	RemoveLast() (T, bool)

	// 在队列头部增加一个元素，队列满时先挤掉队尾
	AddFirst(item T)

	// 在队列头部删除一个元素
	RemoveFirst() (T, bool)

	// 按从头到尾的顺序复制出所有元素
	Values() []T

	IsFull() bool

	IsEmpty() bool
}
