package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: skillsync:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "skillsync"

	// ResumeModulePrefix 简历模块
	ResumeModulePrefix = "resume"
	// JobModulePrefix 岗位模块
	JobModulePrefix = "job"
	// FileModulePrefix 文件模块
	FileModulePrefix = "file"

	// EntityData 解析结果实体
	EntityData = "data"
	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"
	// EntityMD5ToUUID MD5到UUID的映射实体
	EntityMD5ToUUID = "md5_to_uuid"

	// KeyResumeData 解析后的简历记录 (STRING, JSON)
	// 格式: skillsync:resume:data:{sessionID}
	KeyResumeData = AppPrefix + ":" + ResumeModulePrefix + ":" + EntityData + ":%s"

	// KeyJobDetails 解析后的职位要求记录 (STRING, JSON)
	// 格式: skillsync:job:data:{sessionID}
	KeyJobDetails = AppPrefix + ":" + JobModulePrefix + ":" + EntityData + ":%s"

	// KeyFileMD5Set 文件MD5集合，用于快速去重 (SET)
	// 格式: skillsync:file:dedup_set
	KeyFileMD5Set = AppPrefix + ":" + FileModulePrefix + ":" + EntityDedupSet

	// KeyFileMD5ToSubmissionUUID MD5到SubmissionUUID的映射 (STRING)
	// 格式: skillsync:file:md5_to_uuid:{md5}
	KeyFileMD5ToSubmissionUUID = AppPrefix + ":" + FileModulePrefix + ":" + EntityMD5ToUUID + ":%s"

	// KeyFileMD5Lock 上传去重临界区的分布式锁 (STRING, SETNX)
	// 格式: lock:file_md5:{md5}
	KeyFileMD5Lock = "lock:" + FileModulePrefix + "_md5:%s"
)
