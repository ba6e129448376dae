package eventbus

// 기능별 기본 토픽 이름은 여기서만 선언한다.
var (
	// TopicSyncRequests는 비동기 sync 요청(sync.requested)을 나른다. worker 가 구독한다.
	TopicSyncRequests = NewTopic("newshub.sync.requests")
	// TopicSyncCompleted는 sync 결과 알림(sync.completed)이다. 재시도 없이 발행만 한다.
	TopicSyncCompleted = NewTopic("newshub.sync.completed")
)

var AllTopics = []Topic{
	TopicSyncRequests,
	TopicSyncCompleted,
}
