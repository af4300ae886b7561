package deque

// 数组大小基数
const base = 8

type ArrDeque[T any] struct {
	arr []T
	// 队头下标
	start int
	// 元素个数
	size int
	// 容量
	capacity int
}

// 工厂方法，容量向上取整到 base 的整数倍
func NewArrDeque[T any](capacity int) *ArrDeque[T] {
	if capacity <= 0 {
		capacity = base
	}
	remainder := capacity % base
	if remainder != 0 {
		capacity = capacity - remainder + base
	}
	return &ArrDeque[T]{
		arr:      make([]T, capacity),
		capacity: capacity,
	}
}

func (ad *ArrDeque[T]) index(i int) int {
	return (ad.start + i) % ad.capacity
}

func (ad *ArrDeque[T]) Size() int {
	return ad.size
}

func (ad *ArrDeque[T]) Capacity() int {
	return ad.capacity
}

func (ad *ArrDeque[T]) Get(i int) T {
	if i < 0 || i >= ad.size {
		panic("index out of length")
	}
	return ad.arr[ad.index(i)]
}

func (ad *ArrDeque[T]) Traverse(f func(i int, item T)) {
	for i := 0; i < ad.size; i++ {
		f(i, ad.arr[ad.index(i)])
	}
}

func (ad *ArrDeque[T]) AddLast(item T) {
	if ad.IsFull() {
		ad.RemoveFirst()
	}
	ad.arr[ad.index(ad.size)] = item
	ad.size++
}

func (ad *ArrDeque[T]) RemoveLast() (T, bool) {
	var zero T
	if ad.IsEmpty() {
		return zero, false
	}
	i := ad.index(ad.size - 1)
	item := ad.arr[i]
	ad.arr[i] = zero
	ad.size--
	return item, true
}

func (ad *ArrDeque[T]) AddFirst(item T) {
	if ad.IsFull() {
		ad.RemoveLast()
	}
	ad.start = (ad.start - 1 + ad.capacity) % ad.capacity
	ad.arr[ad.start] = item
	ad.size++
}

func (ad *ArrDeque[T]) RemoveFirst() (T, bool) {
	var zero T
	if ad.IsEmpty() {
		return zero, false
	}
	item := ad.arr[ad.start]
	ad.arr[ad.start] = zero
	ad.start = (ad.start + 1) % ad.capacity
	ad.size--
	return item, true
}

func (ad *ArrDeque[T]) Values() []T {
	values := make([]T, 0, ad.size)
	ad.Traverse(func(_ int, item T) {
		values = append(values, item)
	})
	return values
}

func (ad *ArrDeque[T]) IsFull() bool {
	return ad.size == ad.capacity
}

func (ad *ArrDeque[T]) IsEmpty() bool {
	return ad.size == 0
}

var _ Deque[float64] = (*ArrDeque[float64])(nil)
