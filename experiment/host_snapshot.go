package experiment

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	log "github.com/sirupsen/logrus"

	"qosroute/db_models"
)

// CollectHostSnapshot captures the machine state once per experiment batch
// so result rows can be interpreted against the hardware that produced the
// runtimes. Collection failures degrade to partial snapshots rather than
// aborting the batch.
func CollectHostSnapshot() *db_models.HostSnapshot {
	snapshot := &db_models.HostSnapshot{}

	if info, err := host.Info(); err != nil {
		log.Warnf("Collecting host info failed: %v", err)
	} else {
		snapshot.Hostname = info.Hostname
		snapshot.OS = info.OS
		snapshot.Platform = info.Platform
	}

	if infos, err := cpu.Info(); err != nil {
		log.Warnf("Collecting CPU info failed: %v", err)
	} else if len(infos) > 0 {
		snapshot.CPUModel = infos[0].ModelName
		snapshot.CPUCores = len(infos)
	}

	if percents, err := cpu.Percent(200*time.Millisecond, false); err != nil {
		log.Warnf("Collecting CPU usage failed: %v", err)
	} else if len(percents) > 0 {
		snapshot.CPUUsage = percents[0]
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		log.Warnf("Collecting memory info failed: %v", err)
	} else {
		snapshot.MemTotal = vm.Total
		snapshot.MemUsed = vm.Used
		snapshot.MemPercent = vm.UsedPercent
	}

	if avg, err := load.Avg(); err != nil {
		log.Warnf("Collecting load averages failed: %v", err)
	} else {
		snapshot.Load1 = avg.Load1
		snapshot.Load5 = avg.Load5
		snapshot.Load15 = avg.Load15
	}

	return snapshot
}
